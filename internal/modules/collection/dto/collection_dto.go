package dto

import (
	"bytes"
	"encoding/json"
)

type AddToCollectionInput struct {
	RawgID     int    `json:"rawg_id"`
	Status     string `json:"status"`
	UserRating *int   `json:"user_rating"`
}

// OptionalInt tells an absent JSON field apart from an explicit null.
type OptionalInt struct {
	Set   bool
	Value *int
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type UpdateCollectionInput struct {
	Status     *string     `json:"status"`
	UserRating OptionalInt `json:"user_rating"`
}

type CollectionQuery struct {
	Status string `form:"status"`
}

type CollectionStatusResponse struct {
	InCollection bool    `json:"in_collection"`
	Status       *string `json:"status"`
	UserRating   *int    `json:"user_rating"`
}
