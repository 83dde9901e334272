package main

import (
	"database/sql"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
)

var productNames = []string{
	"Milk", "Bread", "Butter", "Cheese", "Eggs", "Apples", "Bananas",
	"Coffee", "Tea", "Sugar", "Flour", "Rice", "Pasta", "Olive Oil",
	"Chicken", "Beef", "Salmon", "Yogurt", "Honey", "Chocolate",
}

func main() {
	products := flag.Int("products", 20, "number of products to seed")
	cards := flag.Int("cards", 10, "number of discount cards to seed")
	truncate := flag.Bool("truncate", false, "truncate tables before seeding")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	_ = godotenv.Load()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal().Msg("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}

	if *truncate {
		if _, err := db.Exec("TRUNCATE product, discount_card RESTART IDENTITY"); err != nil {
			logger.Fatal().Err(err).Msg("truncate tables")
		}
		logger.Info().Msg("tables truncated")
	}

	for i := 0; i < *products; i++ {
		name := productNames[i%len(productNames)]
		if i >= len(productNames) {
			name = fmt.Sprintf("%s #%d", name, i/len(productNames)+1)
		}
		price := fmt.Sprintf("%d.%02d", 1+rand.Intn(49), rand.Intn(100))
		stock := 5 + rand.Intn(95)
		wholesale := rand.Intn(3) == 0
		_, err := db.Exec(
			`INSERT INTO product (description, price, quantity_in_stock, wholesale_product)
			 VALUES ($1, $2::numeric, $3, $4)`,
			name, price, stock, wholesale)
		if err != nil {
			logger.Fatal().Err(err).Str("product", name).Msg("seed product")
		}
	}
	logger.Info().Int("count", *products).Msg("products seeded")

	for i := 0; i < *cards; i++ {
		number := int64(1000 + i)
		percent := (1 + rand.Intn(5)) * 5
		_, err := db.Exec(
			`INSERT INTO discount_card (number, amount) VALUES ($1, $2)
			 ON CONFLICT (number) DO NOTHING`,
			number, percent)
		if err != nil {
			logger.Fatal().Err(err).Int64("number", number).Msg("seed discount card")
		}
	}
	logger.Info().Int("count", *cards).Msg("discount cards seeded")
}
