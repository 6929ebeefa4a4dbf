// internal/db/store.go
package db

import (
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"boardroom/internal/meeting"
)

type Store struct {
	db *sql.DB
}

type Meeting struct {
	ID        string
	Issue     string
	Chair     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Status    string // running, completed, cancelled
	Decision  string
	Summary   string
	Actions   []string
}

type TurnRow struct {
	ID        int64
	MeetingID string
	Idx       int
	Stage     string
	Speaker   string
	Addressee string
	Act       string
	Text      string
	Reaction  string
	Fallback  bool
	CreatedAt time.Time
}

type OptionRow struct {
	ID        int64
	MeetingID string
	OptionID  string
	Label     string
	Detail    string
	Proposer  string
	Stage     string
	Support   int
	Oppose    int
	Abstain   int
}

// Open opens the store at the given path, creating the directory and
// schema as needed. An empty path uses the default data location.
func Open(path string) (*Store, error) {
	if path == "" {
		dir, err := dataDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "boardroom.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func dataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "boardroom"), nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS meetings (
		id TEXT PRIMARY KEY,
		issue TEXT NOT NULL,
		chair TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		status TEXT DEFAULT 'running',
		decision TEXT,
		summary TEXT,
		actions TEXT
	);

	CREATE TABLE IF NOT EXISTS turns (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		meeting_id TEXT NOT NULL REFERENCES meetings(id),
		idx INTEGER NOT NULL,
		stage TEXT NOT NULL,
		speaker TEXT NOT NULL,
		addressee TEXT,
		act TEXT NOT NULL,
		content TEXT NOT NULL,
		reaction TEXT,
		fallback INTEGER DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_turns_meeting ON turns(meeting_id);

	CREATE TABLE IF NOT EXISTS options (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		meeting_id TEXT NOT NULL REFERENCES meetings(id),
		option_id TEXT NOT NULL,
		label TEXT NOT NULL,
		detail TEXT,
		proposer TEXT NOT NULL,
		stage TEXT NOT NULL,
		support INTEGER DEFAULT 0,
		oppose INTEGER DEFAULT 0,
		abstain INTEGER DEFAULT 0,
		UNIQUE (meeting_id, option_id)
	);

	CREATE INDEX IF NOT EXISTS idx_options_meeting ON options(meeting_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CreateMeeting records a new run
func (s *Store) CreateMeeting(id, issue, chair string) error {
	_, err := s.db.Exec(
		`INSERT INTO meetings (id, issue, chair) VALUES (?, ?, ?)`,
		id, issue, chair,
	)
	return err
}

// GetMeeting retrieves a meeting by ID
func (s *Store) GetMeeting(id string) (*Meeting, error) {
	row := s.db.QueryRow(
		`SELECT id, issue, chair, created_at, updated_at, status, decision, summary, actions
		 FROM meetings WHERE id = ?`, id,
	)

	var m Meeting
	var decision, summary, actions sql.NullString
	err := row.Scan(&m.ID, &m.Issue, &m.Chair, &m.CreatedAt, &m.UpdatedAt, &m.Status, &decision, &summary, &actions)
	if err != nil {
		return nil, err
	}
	m.Decision = decision.String
	m.Summary = summary.String
	m.Actions = splitActions(actions.String)
	return &m, nil
}

// ListMeetings returns all meetings ordered by update time
func (s *Store) ListMeetings() ([]Meeting, error) {
	rows, err := s.db.Query(
		`SELECT id, issue, chair, created_at, updated_at, status, decision, summary, actions
		 FROM meetings ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var meetings []Meeting
	for rows.Next() {
		var m Meeting
		var decision, summary, actions sql.NullString
		if err := rows.Scan(&m.ID, &m.Issue, &m.Chair, &m.CreatedAt, &m.UpdatedAt, &m.Status, &decision, &summary, &actions); err != nil {
			return nil, err
		}
		m.Decision = decision.String
		m.Summary = summary.String
		m.Actions = splitActions(actions.String)
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

// AddTurn appends one dialogue turn to a meeting
func (s *Store) AddTurn(meetingID string, t meeting.Turn) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO turns (meeting_id, idx, stage, speaker, addressee, act, content, reaction, fallback)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meetingID, t.Index, t.Stage, t.Speaker, t.Addressee, t.Act.String(), t.Text, t.Reaction.String(), boolInt(t.Fallback),
	)
	if err != nil {
		return 0, err
	}

	if _, err := s.db.Exec(`UPDATE meetings SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, meetingID); err != nil {
		log.Printf("[db] failed to touch meeting %s: %v", meetingID, err)
	}

	return result.LastInsertId()
}

// GetTurns retrieves a meeting's dialogue in order
func (s *Store) GetTurns(meetingID string) ([]TurnRow, error) {
	rows, err := s.db.Query(
		`SELECT id, meeting_id, idx, stage, speaker, addressee, act, content, reaction, fallback, created_at
		 FROM turns WHERE meeting_id = ? ORDER BY idx`,
		meetingID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []TurnRow
	for rows.Next() {
		var t TurnRow
		var addressee, reaction sql.NullString
		var fallback int
		if err := rows.Scan(&t.ID, &t.MeetingID, &t.Idx, &t.Stage, &t.Speaker, &addressee, &t.Act, &t.Text, &reaction, &fallback, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Addressee = addressee.String
		t.Reaction = reaction.String
		t.Fallback = fallback != 0
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// SaveOption upserts an option's label and tallies
func (s *Store) SaveOption(meetingID string, o OptionRow) error {
	_, err := s.db.Exec(
		`INSERT INTO options (meeting_id, option_id, label, detail, proposer, stage, support, oppose, abstain)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (meeting_id, option_id) DO UPDATE SET
		   support = excluded.support, oppose = excluded.oppose, abstain = excluded.abstain`,
		meetingID, o.OptionID, o.Label, o.Detail, o.Proposer, o.Stage, o.Support, o.Oppose, o.Abstain,
	)
	return err
}

// GetOptions retrieves a meeting's options in proposal order
func (s *Store) GetOptions(meetingID string) ([]OptionRow, error) {
	rows, err := s.db.Query(
		`SELECT id, meeting_id, option_id, label, detail, proposer, stage, support, oppose, abstain
		 FROM options WHERE meeting_id = ? ORDER BY option_id`,
		meetingID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opts []OptionRow
	for rows.Next() {
		var o OptionRow
		var detail sql.NullString
		if err := rows.Scan(&o.ID, &o.MeetingID, &o.OptionID, &o.Label, &detail, &o.Proposer, &o.Stage, &o.Support, &o.Oppose, &o.Abstain); err != nil {
			return nil, err
		}
		o.Detail = detail.String
		opts = append(opts, o)
	}
	return opts, rows.Err()
}

// FinishMeeting records the run outcome
func (s *Store) FinishMeeting(id, status, decision, summary string, actions []string) error {
	_, err := s.db.Exec(
		`UPDATE meetings SET status = ?, decision = ?, summary = ?, actions = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, decision, summary, strings.Join(actions, "\n"), id,
	)
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func splitActions(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
