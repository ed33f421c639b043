package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"docchat/internal/domain"
)

var bucketMessages = []byte("messages")

// BoltHistoryStore persists the chat transcript in a bbolt database.
// Messages are keyed by a monotonically increasing sequence number so that
// iteration order is append order.
type BoltHistoryStore struct {
	db *bbolt.DB
}

func NewBoltHistoryStore(path string) (*BoltHistoryStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketMessages)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create messages bucket: %w", err)
	}

	return &BoltHistoryStore{db: db}, nil
}

func (s *BoltHistoryStore) AppendMessage(msg domain.Message) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMessages)

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}

		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)

		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

func (s *BoltHistoryStore) ListMessages() ([]domain.Message, error) {
	var messages []domain.Message
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMessages).ForEach(func(k, v []byte) error {
			var msg domain.Message
			if err := json.Unmarshal(v, &msg); err != nil {
				return nil // Skip corrupted entries
			}
			messages = append(messages, msg)
			return nil
		})
	})
	return messages, err
}

func (s *BoltHistoryStore) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketMessages); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketMessages)
		return err
	})
}

func (s *BoltHistoryStore) Close() error {
	return s.db.Close()
}
