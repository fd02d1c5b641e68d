package table

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fadedpez/felttable/pkg/entities"
	_ "github.com/mattn/go-sqlite3"
)

// SQLite table schemas. Card lists are stored as JSON columns; the
// repository API stays typed so the core never touches raw blobs.
const (
	createTablesTableSQL = `
	CREATE TABLE IF NOT EXISTS tables (
		id TEXT PRIMARY KEY,
		deck TEXT NOT NULL,         -- JSON array of cards
		dealer_hand TEXT NOT NULL,  -- JSON array of cards
		dealer_score INTEGER NOT NULL,
		current_turn INTEGER NOT NULL,
		phase TEXT NOT NULL,
		timer INTEGER NOT NULL,
		seats TEXT NOT NULL,        -- JSON object of seat -> player ID
		updated_at TIMESTAMP NOT NULL
	)`

	createHandsTableSQL = `
	CREATE TABLE IF NOT EXISTS hands (
		id TEXT PRIMARY KEY,
		table_id TEXT NOT NULL,
		player_id TEXT NOT NULL,
		seat INTEGER NOT NULL,
		cards TEXT NOT NULL,  -- JSON array of cards
		wager INTEGER NOT NULL,
		status TEXT NOT NULL,
		is_turn BOOLEAN NOT NULL,
		insurance_wager INTEGER NOT NULL,
		is_split BOOLEAN NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_hands_table ON hands(table_id)`

	createPlayersTableSQL = `
	CREATE TABLE IF NOT EXISTS players (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		balance INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL,
		last_active_at TIMESTAMP NOT NULL
	)`
)

// SQLiteRepository implements the Repository interface using SQLite
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite repository
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	for _, schema := range []string{createTablesTableSQL, createHandsTableSQL, createPlayersTableSQL} {
		if _, err := db.Exec(schema); err != nil {
			db.Close()
			return nil, fmt.Errorf("error creating schema: %w", err)
		}
	}

	return &SQLiteRepository{db: db}, nil
}

// LoadLatestTable returns the most recently updated table, or nil
func (r *SQLiteRepository) LoadLatestTable(ctx context.Context) (*entities.Table, error) {
	query := `
		SELECT id, deck, dealer_hand, dealer_score, current_turn, phase, timer, seats, updated_at
		FROM tables ORDER BY updated_at DESC LIMIT 1`

	t := &entities.Table{}
	var deckJSON, dealerJSON, seatsJSON []byte
	var phase string
	err := r.db.QueryRowContext(ctx, query).Scan(
		&t.ID, &deckJSON, &dealerJSON, &t.DealerScore, &t.CurrentTurn, &phase, &t.Timer, &seatsJSON, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error loading latest table: %w", err)
	}
	t.Phase = entities.Phase(phase)

	var deckCards []*entities.Card
	if err := json.Unmarshal(deckJSON, &deckCards); err != nil {
		return nil, fmt.Errorf("error decoding deck: %w", err)
	}
	if deckCards != nil {
		t.Deck = &entities.Deck{Cards: deckCards}
	}
	if err := json.Unmarshal(dealerJSON, &t.DealerHand); err != nil {
		return nil, fmt.Errorf("error decoding dealer hand: %w", err)
	}
	if err := json.Unmarshal(seatsJSON, &t.Seats); err != nil {
		return nil, fmt.Errorf("error decoding seats: %w", err)
	}
	if t.Seats == nil {
		t.Seats = make(map[int]string)
	}
	return t, nil
}

// SaveTable upserts a table snapshot
func (r *SQLiteRepository) SaveTable(ctx context.Context, t *entities.Table) error {
	var deckCards []*entities.Card
	if t.Deck != nil {
		deckCards = t.Deck.Cards
	}
	deckJSON, err := json.Marshal(deckCards)
	if err != nil {
		return err
	}
	dealerJSON, err := json.Marshal(t.DealerHand)
	if err != nil {
		return err
	}
	seatsJSON, err := json.Marshal(t.Seats)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO tables (id, deck, dealer_hand, dealer_score, current_turn, phase, timer, seats, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id)
		DO UPDATE SET deck = ?, dealer_hand = ?, dealer_score = ?, current_turn = ?,
			phase = ?, timer = ?, seats = ?, updated_at = CURRENT_TIMESTAMP`

	_, err = r.db.ExecContext(ctx, query,
		t.ID, deckJSON, dealerJSON, t.DealerScore, t.CurrentTurn, string(t.Phase), t.Timer, seatsJSON,
		deckJSON, dealerJSON, t.DealerScore, t.CurrentTurn, string(t.Phase), t.Timer, seatsJSON)
	return err
}

// LoadHands retrieves all hands for a table in seat order. The rowid
// tiebreak keeps two hands at the same seat (a split) in creation
// order; upserts update in place and never reassign the rowid.
func (r *SQLiteRepository) LoadHands(ctx context.Context, tableID string) ([]*entities.Hand, error) {
	query := `
		SELECT id, player_id, seat, cards, wager, status, is_turn, insurance_wager, is_split
		FROM hands WHERE table_id = ? ORDER BY seat, rowid`

	rows, err := r.db.QueryContext(ctx, query, tableID)
	if err != nil {
		return nil, fmt.Errorf("error loading hands: %w", err)
	}
	defer rows.Close()

	hands := make([]*entities.Hand, 0)
	for rows.Next() {
		h := &entities.Hand{}
		var cardsJSON []byte
		var status string
		if err := rows.Scan(&h.ID, &h.PlayerID, &h.Seat, &cardsJSON, &h.Wager, &status, &h.IsTurn, &h.InsuranceWager, &h.IsSplit); err != nil {
			return nil, fmt.Errorf("error scanning hand: %w", err)
		}
		h.Status = entities.HandStatus(status)
		if err := json.Unmarshal(cardsJSON, &h.Cards); err != nil {
			return nil, fmt.Errorf("error decoding cards: %w", err)
		}
		hands = append(hands, h)
	}
	return hands, rows.Err()
}

// SaveHand upserts a hand
func (r *SQLiteRepository) SaveHand(ctx context.Context, tableID string, h *entities.Hand) error {
	cardsJSON, err := json.Marshal(h.Cards)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO hands (id, table_id, player_id, seat, cards, wager, status, is_turn, insurance_wager, is_split)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id)
		DO UPDATE SET cards = ?, wager = ?, status = ?, is_turn = ?, insurance_wager = ?, is_split = ?`

	_, err = r.db.ExecContext(ctx, query,
		h.ID, tableID, h.PlayerID, h.Seat, cardsJSON, h.Wager, string(h.Status), h.IsTurn, h.InsuranceWager, h.IsSplit,
		cardsJSON, h.Wager, string(h.Status), h.IsTurn, h.InsuranceWager, h.IsSplit)
	return err
}

// DeleteHands removes all hands for a table
func (r *SQLiteRepository) DeleteHands(ctx context.Context, tableID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM hands WHERE table_id = ?`, tableID)
	return err
}

// LoadPlayers retrieves players by ID, skipping unknown IDs
func (r *SQLiteRepository) LoadPlayers(ctx context.Context, ids []string) ([]*entities.Player, error) {
	players := make([]*entities.Player, 0, len(ids))
	for _, id := range ids {
		p := &entities.Player{}
		err := r.db.QueryRowContext(ctx,
			`SELECT id, name, balance, created_at, last_active_at FROM players WHERE id = ?`, id).
			Scan(&p.ID, &p.Name, &p.Balance, &p.CreatedAt, &p.LastActiveAt)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error loading player %s: %w", id, err)
		}
		players = append(players, p)
	}
	return players, nil
}

// FindPlayerByName retrieves a player by display name
func (r *SQLiteRepository) FindPlayerByName(ctx context.Context, name string) (*entities.Player, error) {
	p := &entities.Player{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, balance, created_at, last_active_at FROM players WHERE name = ?`, name).
		Scan(&p.ID, &p.Name, &p.Balance, &p.CreatedAt, &p.LastActiveAt)
	if err == sql.ErrNoRows {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error finding player: %w", err)
	}
	return p, nil
}

// SavePlayer upserts a player
func (r *SQLiteRepository) SavePlayer(ctx context.Context, p *entities.Player) error {
	query := `
		INSERT INTO players (id, name, balance, created_at, last_active_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id)
		DO UPDATE SET name = ?, balance = ?, last_active_at = ?`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Balance, p.CreatedAt, p.LastActiveAt,
		p.Name, p.Balance, p.LastActiveAt)
	return err
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
