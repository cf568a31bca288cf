// Package main provides a tool to seed the database with demo catalog data.
//
// This creates test users, collections, and books directly in the store to
// exercise public listings and search without going through the signup flow.
// Seeded users have no identity at the auth provider, so they cannot log in.
//
// Usage:
//
//	DB_PATH=~/BookStacks/data/db go run ./cmd/seed
//	DB_PATH=~/BookStacks/data/db go run ./cmd/seed --books-per-collection 10
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/bookstacksapp/bookstacks-server/internal/domain"
	"github.com/bookstacksapp/bookstacks-server/internal/id"
	"github.com/bookstacksapp/bookstacks-server/internal/store"
)

var booksPerCollection = flag.Int("books-per-collection", 5, "Number of books to create in each collection")

// seedUsers are the demo accounts. IDs are fixed so re-running the tool
// upserts instead of multiplying users.
var seedUsers = []*domain.User{
	{ID: "user-seed-alex", Email: "alex@example.com", Name: "Alex Rivera", Bio: "Collects mid-century science fiction."},
	{ID: "user-seed-jordan", Email: "jordan@example.com", Name: "Jordan Chen", Bio: "Mostly nonfiction and history."},
	{ID: "user-seed-sam", Email: "sam@example.com", Name: "Sam Taylor"},
}

// collectionNames per user, cycled.
var collectionNames = []string{
	"To Read",
	"Favorites",
	"Science Fiction",
	"History Shelf",
	"Borrowed",
}

var titles = []string{
	"The Left Hand of Darkness",
	"A Canticle for Leibowitz",
	"The Dispossessed",
	"Roadside Picnic",
	"Solaris",
	"The Guns of August",
	"A Distant Mirror",
	"The Making of the Atomic Bomb",
	"Gödel, Escher, Bach",
	"The Name of the Rose",
	"Invisible Cities",
	"Stoner",
}

var authors = []string{
	"Ursula K. Le Guin",
	"Walter M. Miller Jr.",
	"Arkady Strugatsky",
	"Stanisław Lem",
	"Barbara W. Tuchman",
	"Richard Rhodes",
	"Douglas Hofstadter",
	"Umberto Eco",
	"Italo Calvino",
	"John Williams",
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/BookStacks/data/db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now().UTC()

	booksCreated := 0
	collectionsCreated := 0

	for i, user := range seedUsers {
		if err := s.Users.Put(ctx, user.ID, user); err != nil {
			log.Printf("Failed to upsert user %s: %v", user.Email, err)
			continue
		}
		fmt.Printf("\nSeeded user: %s (%s)\n", user.Name, user.ID)

		// Two collections per user, names offset so each user gets a
		// different pair.
		for j := range 2 {
			coll := &domain.Collection{
				ID:          id.MustGenerate("collection"),
				Name:        collectionNames[(i*2+j)%len(collectionNames)],
				Description: fmt.Sprintf("Seeded collection for %s", user.Name),
				UserID:      user.ID,
				CreatedAt:   now,
			}
			if err := s.Collections.Create(ctx, coll.ID, coll); err != nil {
				log.Printf("Failed to create collection %s: %v", coll.Name, err)
				continue
			}
			collectionsCreated++

			for range *booksPerCollection {
				book := &domain.Book{
					ID:           id.MustGenerate("book"),
					Title:        titles[rng.Intn(len(titles))],
					Author:       authors[rng.Intn(len(authors))],
					Description:  "Seeded catalog entry.",
					CollectionID: coll.ID,
					UserID:       user.ID,
					CreatedAt:    now,
				}
				if err := s.Books.Create(ctx, book.ID, book); err != nil {
					log.Printf("Failed to create book %s: %v", book.Title, err)
					continue
				}
				booksCreated++
			}

			fmt.Printf("  Created collection %q with %d books\n", coll.Name, *booksPerCollection)
		}
	}

	fmt.Printf("\nSeeding complete: %d users, %d collections, %d books\n",
		len(seedUsers), collectionsCreated, booksCreated)
	fmt.Println("Restart the server to rebuild the search index over the seeded books.")
}
