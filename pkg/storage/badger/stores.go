package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/DrSkyle/chainpath/pkg/graph"
)

const (
	prefixEdges        = "g:"
	prefixOnChainEdges = "oe:"
	prefixOnChain      = "oc:"
)

// txnRunner hands stores a transaction: a fresh one per call, or one shared
// by a whole batch.
type txnRunner interface {
	update(fn func(txn *badger.Txn) error) error
	view(fn func(txn *badger.Txn) error) error
}

type dbRunner struct{ db *DB }

func (r dbRunner) update(fn func(txn *badger.Txn) error) error {
	return r.db.WithTxn(context.Background(), fn)
}

func (r dbRunner) view(fn func(txn *badger.Txn) error) error {
	return r.db.WithReadTxn(context.Background(), fn)
}

// txnScope runs every call inside txn. Reads see the batch's own writes.
type txnScope struct{ txn *badger.Txn }

func (r txnScope) update(fn func(txn *badger.Txn) error) error { return fn(r.txn) }
func (r txnScope) view(fn func(txn *badger.Txn) error) error   { return fn(r.txn) }

// AdjacencyStore is a graph.AdjacencyStore over one key prefix.
type AdjacencyStore struct {
	run    txnRunner
	prefix string
}

func stores(run txnRunner) (*AdjacencyStore, *AdjacencyStore, *MemberStore) {
	return &AdjacencyStore{run: run, prefix: prefixEdges},
		&AdjacencyStore{run: run, prefix: prefixOnChainEdges},
		&MemberStore{run: run, prefix: prefixOnChain}
}

// NewIndex builds a graph.Index whose three structures live in db. Each
// AddEdges call commits in a single transaction.
func NewIndex(db *DB) *graph.Index {
	edges, onChainEdges, onChain := stores(dbRunner{db})
	return graph.NewIndex(edges, onChainEdges, onChain).WithBatcher(func(fn graph.BatchFunc) error {
		return db.WithTxn(context.Background(), func(txn *badger.Txn) error {
			edges, onChainEdges, onChain := stores(txnScope{txn})
			return fn(edges, onChainEdges, onChain)
		})
	})
}

func (s *AdjacencyStore) key(name string) []byte {
	return []byte(s.prefix + name)
}

func readList(txn *badger.Txn, key []byte) ([]string, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []string
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &list)
	})
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return list, nil
}

func (s *AdjacencyStore) Neighbors(name string) (*graph.NameSet, error) {
	var list []string
	err := s.run.view(func(txn *badger.Txn) error {
		var err error
		list, err = readList(txn, s.key(name))
		return err
	})
	if err != nil {
		return nil, err
	}
	return graph.NewNameSet(list...), nil
}

// Link appends neighbor to name's list.
func (s *AdjacencyStore) Link(name, neighbor string) error {
	return s.run.update(func(txn *badger.Txn) error {
		key := s.key(name)
		list, err := readList(txn, key)
		if err != nil {
			return err
		}
		for _, n := range list {
			if n == neighbor {
				return nil
			}
		}
		data, err := json.Marshal(append(list, neighbor))
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
}

func (s *AdjacencyStore) Names() ([]string, error) {
	return scanNames(s.run, s.prefix)
}

func scanNames(run txnRunner, prefix string) ([]string, error) {
	names := []string{}
	err := run.view(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			names = append(names, string(key[len(prefix):]))
		}
		return nil
	})
	return names, err
}

// MemberStore is a graph.MemberStore storing one empty-valued key per member.
type MemberStore struct {
	run    txnRunner
	prefix string
}

func (s *MemberStore) Contains(name string) (bool, error) {
	found := false
	err := s.run.view(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(s.prefix + name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return found, err
}

func (s *MemberStore) Insert(name string) error {
	return s.run.update(func(txn *badger.Txn) error {
		return txn.Set([]byte(s.prefix+name), nil)
	})
}

// Members lists flagged names in key order.
func (s *MemberStore) Members() ([]string, error) {
	return scanNames(s.run, s.prefix)
}
