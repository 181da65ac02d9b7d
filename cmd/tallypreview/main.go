package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/packvote/api/internal/adapters/repository/postgres"
	"github.com/packvote/api/internal/core/domain"
	"github.com/packvote/api/internal/core/tally"
)

// tallypreview runs the instant-runoff count for a trip against the live
// database and prints the round-by-round trace. It never writes anything,
// so it is safe to run against a trip that is still voting.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	var dbHost, dbPort, dbUser, dbPass, dbName, tripIDStr string

	flag.StringVar(&dbHost, "db-host", os.Getenv("POSTGRES_HOST"), "Database host")
	flag.StringVar(&dbPort, "db-port", os.Getenv("POSTGRES_PORT"), "Database port")
	flag.StringVar(&dbUser, "db-user", os.Getenv("POSTGRES_USER"), "Database user")
	flag.StringVar(&dbPass, "db-pass", os.Getenv("POSTGRES_PASSWORD"), "Database password")
	flag.StringVar(&dbName, "db-name", os.Getenv("POSTGRES_DB"), "Database name")
	flag.StringVar(&tripIDStr, "trip", "", "Trip id to tally")
	flag.Parse()

	tripID, err := uuid.Parse(tripIDStr)
	if err != nil {
		log.Fatalf("a valid -trip id is required: %v", err)
	}

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", dbUser, dbPass, dbHost, dbPort, dbName)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	voteRepo := postgres.NewVoteRepository(db)
	recRepo := postgres.NewRecommendationRepository(db)

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	votes, err := voteRepo.GetAllByTrip(ctx, tripID)
	if err != nil {
		log.Fatalf("Error loading votes: %v", err)
	}
	if len(votes) == 0 {
		log.Fatal("No ballots have been cast for this trip")
	}

	recs, err := recRepo.ListByTrip(ctx, tripID)
	if err != nil {
		log.Fatalf("Error loading recommendations: %v", err)
	}

	candidates := make([]tally.Candidate, 0, len(recs))
	names := make(map[string]string, len(recs))
	for _, rec := range recs {
		candidates = append(candidates, tally.Candidate{
			ID:              rec.ID.String(),
			DestinationName: rec.DestinationName,
		})
		names[rec.ID.String()] = rec.DestinationName
	}

	winner, rounds := tally.Count(candidates, buildBallots(votes))

	for _, round := range rounds {
		fmt.Printf("Round %d (%d active ballots)\n", round.Round, round.TotalVotes)
		printCounts(round.VoteCounts, names)
		if round.Eliminated != nil {
			fmt.Printf("  eliminated: %s\n", names[*round.Eliminated])
		}
	}

	if winner == nil {
		fmt.Println("No winner could be determined")
		return
	}
	fmt.Printf("Winner: %s\n", winner.DestinationName)
}

func printCounts(counts map[string]int, names map[string]string) {
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Printf("  %-30s %d\n", names[id], counts[id])
	}
}

func buildBallots(votes []domain.Vote) []tally.Ballot {
	byUser := make(map[uuid.UUID][]domain.Vote)
	for _, v := range votes {
		byUser[v.UserID] = append(byUser[v.UserID], v)
	}

	ballots := make([]tally.Ballot, 0, len(byUser))
	for _, userVotes := range byUser {
		sort.Slice(userVotes, func(i, j int) bool {
			return userVotes[i].Rank < userVotes[j].Rank
		})
		ranking := make([]string, 0, len(userVotes))
		for _, v := range userVotes {
			ranking = append(ranking, v.RecommendationID.String())
		}
		ballots = append(ballots, tally.Ballot{Ranking: ranking})
	}
	return ballots
}
