package model

// Plant is one catalog persona a quiz taker can be matched with.
// The catalog is static: loaded once, never mutated.
type Plant struct {
	Name        string   `json:"name" bson:"_id"`
	Image       string   `json:"image" bson:"image"`
	Description string   `json:"description" bson:"description"`
	Tags        []string `json:"tags" bson:"tags"`
}
