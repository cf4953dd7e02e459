package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go"
	"google.golang.org/api/option"
)

type FirebaseStore struct {
	app    *firebase.App
	bucket string
}

// NewFirebaseStore accepts credentials either as inline JSON or as a file path.
// Empty credentials fall back to application default credentials.
func NewFirebaseStore(ctx context.Context, bucket, credentials string) (*FirebaseStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("FIREBASE_STORAGE_BUCKET not set")
	}

	var opts []option.ClientOption
	if credentials != "" {
		if strings.HasPrefix(credentials, "{") {
			log.Println("Using Firebase credentials from environment variable")
			opts = append(opts, option.WithCredentialsJSON([]byte(credentials)))
		} else {
			log.Println("Using Firebase credentials from file:", credentials)
			opts = append(opts, option.WithCredentialsFile(credentials))
		}
	} else {
		log.Println("Warning: GOOGLE_APPLICATION_CREDENTIALS not set, using default credentials")
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucket}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase init failed: %w", err)
	}

	log.Println("Firebase initialized successfully")
	return &FirebaseStore{app: app, bucket: bucket}, nil
}

func (f *FirebaseStore) handle(ctx context.Context) (*gcs.BucketHandle, error) {
	client, err := f.app.Storage(ctx)
	if err != nil {
		return nil, err
	}
	return client.Bucket(f.bucket)
}

func (f *FirebaseStore) Upload(ctx context.Context, r io.Reader, size int64, filename, contentType string) (string, error) {
	bucket, err := f.handle(ctx)
	if err != nil {
		return "", err
	}

	key := bannerPrefix + "/" + objectName(filename, time.Now())
	obj := bucket.Object(key)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload: %w", err)
	}

	// Make object publicly readable so the URL works without authentication
	if err := obj.ACL().Set(ctx, gcs.AllUsers, gcs.RoleReader); err != nil {
		log.Printf("Warning: failed to set public ACL on %s: %v", key, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", f.bucket, key), nil
}

func (f *FirebaseStore) Delete(ctx context.Context, url string) error {
	key := objectKeyFromURL(url)
	if key == "" {
		return fmt.Errorf("not a banner url: %s", url)
	}

	bucket, err := f.handle(ctx)
	if err != nil {
		return err
	}
	if err := bucket.Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}

	log.Printf("Deleted file %s from bucket %s", key, f.bucket)
	return nil
}
