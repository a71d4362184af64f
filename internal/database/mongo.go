package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusconnect/entity"
	"campusconnect/internal/config"
)

const collectionScanLog = "scan_log"

// MongoDB keeps the attendance scan audit log. It is optional: when
// disabled in configuration, NewMongoClient returns nil and callers
// skip audit writes.
type MongoDB struct {
	ctx           context.Context
	clientOptions *options.ClientOptions
	database      string
}

func NewMongoClient(conf *config.Config) *MongoDB {
	if !conf.Mongo.Enabled {
		return nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		ctx:           context.Background(),
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
	}
	return client
}

func (m *MongoDB) connect() (*mongo.Client, error) {
	connection, err := mongo.Connect(m.ctx, m.clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	return connection, nil
}

func (m *MongoDB) disconnect(connection *mongo.Client) {
	_ = connection.Disconnect(m.ctx)
}

// SaveScan appends one attendance confirmation attempt to the log.
func (m *MongoDB) SaveScan(record *entity.ScanRecord) error {
	connection, err := m.connect()
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionScanLog)
	_, err = collection.InsertOne(m.ctx, record)
	return err
}

// RecentScans returns the latest attempts, newest first.
func (m *MongoDB) RecentScans(limit int64) ([]*entity.ScanRecord, error) {
	connection, err := m.connect()
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	collection := connection.Database(m.database).Collection(collectionScanLog)
	opts := options.Find().
		SetSort(bson.D{{Key: "scanned_at", Value: -1}}).
		SetLimit(limit)
	cursor, err := collection.Find(m.ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb find: %w", err)
	}
	defer cursor.Close(m.ctx)

	var records []*entity.ScanRecord
	if err = cursor.All(m.ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}
