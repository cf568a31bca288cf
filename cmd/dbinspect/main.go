package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/bookstacksapp/bookstacks-server/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/BookStacks/data/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	userCount := 0
	collections := map[string]*domain.Collection{}
	books := []*domain.Book{}

	err = db.View(func(txn *badger.Txn) error {
		if err := scan(txn, "user:", func(val []byte) error {
			var u domain.User
			if err := json.Unmarshal(val, &u); err != nil {
				return err
			}
			userCount++
			return nil
		}); err != nil {
			return err
		}

		if err := scan(txn, "collection:", func(val []byte) error {
			var c domain.Collection
			if err := json.Unmarshal(val, &c); err != nil {
				return err
			}
			collections[c.ID] = &c
			return nil
		}); err != nil {
			return err
		}

		return scan(txn, "book:", func(val []byte) error {
			var b domain.Book
			if err := json.Unmarshal(val, &b); err != nil {
				return err
			}
			books = append(books, &b)
			return nil
		})
	})
	if err != nil {
		log.Fatalf("Error iterating database: %v", err)
	}

	// Books per collection, plus orphans pointing at collections that no
	// longer exist.
	perCollection := map[string]int{}
	orphans := []*domain.Book{}
	for _, b := range books {
		if _, ok := collections[b.CollectionID]; ok {
			perCollection[b.CollectionID]++
		} else {
			orphans = append(orphans, b)
		}
	}

	for _, c := range collections {
		fmt.Printf("Collection: %s\n", c.Name)
		fmt.Printf("  ID: %s\n", c.ID)
		fmt.Printf("  Owner: %s\n", c.UserID)
		fmt.Printf("  Books: %d\n", perCollection[c.ID])
		fmt.Println()
	}

	for i, b := range orphans {
		if i >= 5 {
			fmt.Printf("... and %d more orphaned books\n", len(orphans)-5)
			break
		}
		fmt.Printf("Book (ORPHANED): %s\n", b.Title)
		fmt.Printf("  ID: %s\n", b.ID)
		fmt.Printf("  Collection: %s (missing)\n", b.CollectionID)
		fmt.Println()
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total users: %d\n", userCount)
	fmt.Printf("Total collections: %d\n", len(collections))
	fmt.Printf("Total books: %d\n", len(books))
	fmt.Printf("Orphaned books: %d\n", len(orphans))
	if len(collections) > 0 {
		fmt.Printf("Average books per collection: %.1f\n",
			float64(len(books)-len(orphans))/float64(len(collections)))
	}
}

// scan iterates every value under the given key prefix.
func scan(txn *badger.Txn, prefix string, fn func(val []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
		key := string(it.Item().Key())
		if err := it.Item().Value(fn); err != nil {
			log.Printf("Error reading %s: %v", key, err)
		}
	}
	return nil
}
