package structs

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Execution struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	LogKey    string             `bson:"log_key"`
	Symbol    string             `bson:"symbol"`
	Outcome   string             `bson:"outcome"`
	Payload   string             `bson:"payload"`
	CreatedAt time.Time          `bson:"created_at"`
}
