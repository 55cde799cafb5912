package database

import (
	"context"
	"log"

	"flatmate/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"
)

// DBClient is the global Firebase Realtime Database client.
var DBClient *db.Client

// InitDB initializes the Firebase app and Realtime Database connection.
func InitDB() {
	ctx := context.Background()

	opt := option.WithCredentialsFile(config.AppConfig.FirebaseCredentialsFile)
	conf := &firebase.Config{
		DatabaseURL: config.AppConfig.FirebaseDatabaseURL,
	}

	app, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		log.Fatalf("failed to initialize Firebase app: %v", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		log.Fatalf("failed to connect to Realtime Database: %v", err)
	}
	DBClient = client
	log.Println("Connected to Firebase Realtime Database successfully!")
}
