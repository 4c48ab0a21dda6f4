package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyTotals      = "totals"
	keyGamePrefix  = "game:"
)

// ErrNoSuchGame reports a missing archive id.
var ErrNoSuchGame = errors.New("no such game")

// DevicePreferences stores the user-facing board settings.
type DevicePreferences struct {
	BoardName       string    `json:"board_name"`       // name the link advertises
	SettleMillis    int       `json:"settle_millis"`    // sense debounce window
	FlipOrientation bool      `json:"flip_orientation"` // white plays from the far side
	LastUsed        time.Time `json:"last_used"`
}

// DefaultPreferences returns the out-of-box settings.
func DefaultPreferences() *DevicePreferences {
	return &DevicePreferences{
		BoardName:    "auto-chessboard",
		SettleMillis: 1000,
	}
}

// A GameRecord is one archived finished game.
type GameRecord struct {
	ID        string    `json:"id"`
	PGN       string    `json:"pgn"` // seven-tag roster plus movetext
	FinalFEN  string    `json:"final_fen"`
	Result    string    `json:"result"` // PGN result token
	Method    string    `json:"method"` // how the game ended
	MoveCount int       `json:"move_count"`
	Ended     time.Time `json:"ended"`
}

// ArchiveTotals count archived games per result.
type ArchiveTotals struct {
	Games     int `json:"games"`
	WhiteWins int `json:"white_wins"`
	BlackWins int `json:"black_wins"`
	Draws     int `json:"draws"`
}

// Storage wraps BadgerDB for persistent storage.
type Storage struct {
	db *badger.DB
}

// NewStorage opens the database in the platform data directory.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return NewStorageAt(dbDir)
}

// NewStorageAt opens the database in a specific directory. Tests point
// this at a scratch directory.
func NewStorageAt(dir string) (*Storage, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SavePreferences saves the device preferences.
func (s *Storage) SavePreferences(prefs *DevicePreferences) error {
	prefs.LastUsed = time.Now()

	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences loads the device preferences, returning defaults if
// none were saved yet.
func (s *Storage) LoadPreferences() (*DevicePreferences, error) {
	prefs := DefaultPreferences()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPreferences))
		if err == badger.ErrKeyNotFound {
			return nil // Use defaults
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, prefs)
		})
	})

	return prefs, err
}

// ArchiveGame wraps the movetext in a seven-tag roster, persists the
// finished game, and bumps the running totals. Returns the archive id.
func (s *Storage) ArchiveGame(movetext, finalFEN, result, method string, moveCount int) (string, error) {
	ended := time.Now()
	// Zero-padded nanoseconds keep byte order chronological.
	id := fmt.Sprintf("%020d", ended.UnixNano())
	rec := GameRecord{
		ID:        id,
		PGN:       taggedPGN(movetext, result, ended),
		FinalFEN:  finalFEN,
		Result:    result,
		Method:    method,
		MoveCount: moveCount,
		Ended:     ended,
	}

	data, err := json.Marshal(&rec)
	if err != nil {
		return "", err
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyGamePrefix+id), data)
	})
	if err != nil {
		return "", err
	}
	return id, s.recordTotals(result)
}

// ListGames returns archived game ids, newest first.
func (s *Storage) ListGames() ([]string, error) {
	var ids []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyGamePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	return ids, nil
}

// LoadGame loads one archived game by id.
func (s *Storage) LoadGame(id string) (*GameRecord, error) {
	rec := &GameRecord{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyGamePrefix + id))
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: %s", ErrNoSuchGame, id)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteGame removes one archived game.
func (s *Storage) DeleteGame(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyGamePrefix + id))
	})
}

// LoadTotals loads the running totals, empty if none were saved yet.
func (s *Storage) LoadTotals() (*ArchiveTotals, error) {
	totals := &ArchiveTotals{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyTotals))
		if err == badger.ErrKeyNotFound {
			return nil // Use zeroes
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, totals)
		})
	})

	return totals, err
}

func (s *Storage) recordTotals(result string) error {
	totals, err := s.LoadTotals()
	if err != nil {
		return err
	}

	totals.Games++
	switch result {
	case "1-0":
		totals.WhiteWins++
	case "0-1":
		totals.BlackWins++
	case "1/2-1/2":
		totals.Draws++
	}

	data, err := json.Marshal(totals)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyTotals), data)
	})
}

// taggedPGN wraps movetext in the standard seven-tag roster.
func taggedPGN(movetext, result string, ended time.Time) string {
	var sb strings.Builder
	sb.WriteString("[Event \"Casual game\"]\n")
	sb.WriteString("[Site \"auto-chessboard\"]\n")
	fmt.Fprintf(&sb, "[Date %q]\n", ended.Format("2006.01.02"))
	sb.WriteString("[Round \"-\"]\n")
	sb.WriteString("[White \"White\"]\n")
	sb.WriteString("[Black \"Black\"]\n")
	fmt.Fprintf(&sb, "[Result %q]\n\n", result)
	sb.WriteString(movetext)
	sb.WriteByte('\n')
	return sb.String()
}
