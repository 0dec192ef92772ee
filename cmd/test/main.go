// Connectivity smoke check for the configured MongoDB deployment. Run it
// before starting the bot to verify the URI and print catalog counts.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"MediaSearchBot/internal/config"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg := config.Load()
	if cfg.MongoURI == "" {
		log.Fatal("DATABASE_URI is not set")
	}

	log.Printf("Attempting to connect to MongoDB with URI: %s", cfg.MongoURI)

	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetServerSelectionTimeout(30 * time.Second).
		SetConnectTimeout(30 * time.Second).
		SetSocketTimeout(30 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer client.Disconnect(ctx)

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	fmt.Println("Successfully connected to MongoDB!")

	coll := client.Database(cfg.MongoDatabase).Collection(cfg.MongoCollection)
	count, err := coll.CountDocuments(ctx, map[string]any{})
	if err != nil {
		log.Fatalf("Failed to count documents: %v", err)
	}
	fmt.Printf("Catalog %s.%s holds %d files.\n", cfg.MongoDatabase, cfg.MongoCollection, count)
}
