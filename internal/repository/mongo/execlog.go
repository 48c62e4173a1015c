package mongo

import (
	"context"
	"encoding/json"
	"time"

	"tradeauto/internal/repository/mongo/structs"
	"tradeauto/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ExecLogRepository struct {
	conn       *mongo.Client
	collection *mongo.Collection
}

func NewExecLogRepository(conn *mongo.Client) *ExecLogRepository {
	collection := conn.Database("tradeauto").Collection("executions")

	return &ExecLogRepository{conn: conn, collection: collection}
}

func (r *ExecLogRepository) Store(log *models.ExecutionLog) error {
	payload, err := json.Marshal(log)
	if err != nil {
		return err
	}

	_, err = r.collection.InsertOne(context.TODO(), structs.Execution{
		LogKey:    log.Key,
		Symbol:    log.WebhookData.Symbol,
		Outcome:   log.Outcome,
		Payload:   string(payload),
		CreatedAt: time.Now().UTC(),
	})

	return err
}

func (r *ExecLogRepository) GetLast(symbol string) (*models.ExecutionLog, error) {
	var result structs.Execution

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	err := r.collection.FindOne(context.TODO(), bson.D{{Key: "symbol", Value: symbol}}, opts).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var log models.ExecutionLog
	if err := json.Unmarshal([]byte(result.Payload), &log); err != nil {
		return nil, err
	}

	return &log, nil
}
