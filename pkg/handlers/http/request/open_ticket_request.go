package request

import "fmt"

type OpenTicketRequest struct {
	OwnerID    string `json:"owner_id"`
	CategoryID string `json:"category_id"`
}

func (r *OpenTicketRequest) Validate() error {
	if r.OwnerID == "" {
		return fmt.Errorf("owner_id is required")
	}
	if r.CategoryID == "" {
		return fmt.Errorf("category_id is required")
	}
	return nil
}
