// Package firestore implements the fallback-token store as a single
// Firestore document, for deployments where relay instances share state.
package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collection = "relay"
	document   = "hms_fallback_token"
)

// FirestoreStore implements push.FallbackTokenStore using Google Cloud
// Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

type tokenRecord struct {
	Token     string    `firestore:"token"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func (s *FirestoreStore) Fetch(ctx context.Context) (string, error) {
	snap, err := s.docRef().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", nil
		}
		return "", err
	}

	var record tokenRecord
	if err := snap.DataTo(&record); err != nil {
		return "", err
	}
	return record.Token, nil
}

func (s *FirestoreStore) Save(ctx context.Context, token string) error {
	_, err := s.docRef().Set(ctx, tokenRecord{
		Token:     token,
		UpdatedAt: time.Now(),
	})
	return err
}

func (s *FirestoreStore) docRef() *firestore.DocumentRef {
	return s.client.Collection(collection).Doc(document)
}
