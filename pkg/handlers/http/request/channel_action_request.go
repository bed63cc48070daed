package request

import "fmt"

// ChannelActionRequest covers the interactions that target an existing ticket
// channel: close, reopen, and both notification pings.
type ChannelActionRequest struct {
	ChannelID string `json:"channel_id"`
	ActorID   string `json:"actor_id"`
}

func (r *ChannelActionRequest) Validate() error {
	if r.ChannelID == "" {
		return fmt.Errorf("channel_id is required")
	}
	if r.ActorID == "" {
		return fmt.Errorf("actor_id is required")
	}
	return nil
}

type MemberActionRequest struct {
	ChannelID string `json:"channel_id"`
	ActorID   string `json:"actor_id"`
	MemberID  string `json:"member_id"`
}

func (r *MemberActionRequest) Validate() error {
	if r.ChannelID == "" {
		return fmt.Errorf("channel_id is required")
	}
	if r.ActorID == "" {
		return fmt.Errorf("actor_id is required")
	}
	if r.MemberID == "" {
		return fmt.Errorf("member_id is required")
	}
	return nil
}
