package store

import (
	_ "embed"
	"encoding/json"

	"betboard/internal/domain"
)

//go:embed seed/bets.json
var seedFixture []byte

// seedBets parses the bundled fixture used when no snapshot exists.
func seedBets() ([]domain.Bet, error) {
	var bets []domain.Bet
	if err := json.Unmarshal(seedFixture, &bets); err != nil {
		return nil, err
	}
	return bets, nil
}
