package chatplatform

import "time"

// Permission names understood by the platform's overwrite endpoints.
const (
	PermViewChannel  = "VIEW_CHANNEL"
	PermSendMessages = "SEND_MESSAGES"
	PermAttachFiles  = "ATTACH_FILES"
)

type PermissionOverwrite struct {
	MemberID string   `json:"member_id"`
	Allow    []string `json:"allow,omitempty"`
	Deny     []string `json:"deny,omitempty"`
}

// ChannelSpec describes a channel to provision under a parent grouping.
type ChannelSpec struct {
	Name       string                `json:"name"`
	ParentID   string                `json:"parent_id"`
	Overwrites []PermissionOverwrite `json:"permission_overwrites,omitempty"`
}

type Channel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parent_id"`
}

type Member struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

type Message struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Bot        bool      `json:"bot"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sent_at"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       string       `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Outbound is a message to deliver: plain content (used for mentions), an
// optional structured embed, and an optional file attachment.
type Outbound struct {
	Content    string
	Embed      *Embed
	Attachment *Attachment
}

// Mention renders a member mention in the platform's inline syntax.
func Mention(memberID string) string {
	return "<@" + memberID + ">"
}

// ChannelRef renders a channel reference in the platform's inline syntax.
func ChannelRef(channelID string) string {
	return "<#" + channelID + ">"
}
