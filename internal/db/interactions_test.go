package db

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/jansevak/jansevak-be/internal/assistant"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return Wrap(sqlDB), mock
}

func TestDB_SaveInteraction(t *testing.T) {
	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		wantErr   bool
	}{
		{
			name: "insert ok",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`INSERT INTO assistant_interactions`).
					WithArgs("11111111-1111-1111-1111-111111111111", "chat", "kisan", "answer", "remote", int64(120), created).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "insert error",
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectExec(`INSERT INTO assistant_interactions`).
					WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			database, mock := newMockDB(t)
			tt.setupMock(mock)

			err := database.SaveInteraction(context.Background(), Interaction{
				ID:        "11111111-1111-1111-1111-111111111111",
				Channel:   "chat",
				Prompt:    "kisan",
				Response:  "answer",
				Outcome:   "remote",
				LatencyMS: 120,
				CreatedAt: created,
			})
			if (err != nil) != tt.wantErr {
				t.Fatalf("SaveInteraction error = %v, wantErr %v", err, tt.wantErr)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestDB_RecentInteractions(t *testing.T) {
	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	columns := []string{"id", "channel", "prompt", "response", "outcome", "latency_ms", "created_at"}

	tests := []struct {
		name      string
		channel   string
		limit     int
		setupMock func(sqlmock.Sqlmock)
		wantLen   int
		wantErr   bool
	}{
		{
			name:    "all channels",
			channel: "",
			limit:   10,
			setupMock: func(m sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(columns).
					AddRow("a", "chat", "kisan", "r1", "remote", int64(900), created).
					AddRow("b", "voice", "student", "r2", "no_credential", int64(1500), created)
				m.ExpectQuery(regexp.QuoteMeta(`FROM assistant_interactions`)).
					WithArgs("", 10).
					WillReturnRows(rows)
			},
			wantLen: 2,
		},
		{
			name:    "limit clamped",
			channel: "ws",
			limit:   1000,
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(`FROM assistant_interactions`)).
					WithArgs("ws", 20).
					WillReturnRows(sqlmock.NewRows(columns))
			},
			wantLen: 0,
		},
		{
			name:  "query error",
			limit: 5,
			setupMock: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(`SELECT`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			database, mock := newMockDB(t)
			tt.setupMock(mock)

			got, err := database.RecentInteractions(context.Background(), tt.channel, tt.limit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("RecentInteractions error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && len(got) != tt.wantLen {
				t.Fatalf("got %d interactions, want %d", len(got), tt.wantLen)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("unmet expectations: %v", err)
			}
		})
	}
}

func TestDB_OutcomeCounts(t *testing.T) {
	database, mock := newMockDB(t)
	mock.ExpectQuery(`GROUP BY outcome`).
		WillReturnRows(sqlmock.NewRows([]string{"outcome", "count"}).
			AddRow("remote", 7).
			AddRow("transport_error", 2))

	counts, err := database.OutcomeCounts(context.Background())
	if err != nil {
		t.Fatalf("OutcomeCounts() error = %v", err)
	}
	if counts["remote"] != 7 || counts["transport_error"] != 2 {
		t.Errorf("unexpected counts %v", counts)
	}
}

func TestDB_Migrate(t *testing.T) {
	database, mock := newMockDB(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS assistant_interactions`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := database.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInteractionAdapter_RecordInteraction(t *testing.T) {
	database, mock := newMockDB(t)
	created := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO assistant_interactions`).
		WithArgs("id-1", "voice", "[PHONE] kisan", "answer", "no_credential", int64(1500), created).
		WillReturnResult(sqlmock.NewResult(0, 1))

	adapter := NewInteractionAdapter(database)
	err := adapter.RecordInteraction(context.Background(), assistant.Interaction{
		ID:        "id-1",
		Channel:   assistant.ChannelVoice,
		Prompt:    "[PHONE] kisan",
		Response:  "answer",
		Outcome:   assistant.OutcomeNoCredential,
		Latency:   1500 * time.Millisecond,
		CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("RecordInteraction() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConfig_DSN(t *testing.T) {
	dsn := Config{Host: "localhost", Port: 5432, User: "u", Password: "p", Database: "jansevak"}.DSN()
	want := "host=localhost port=5432 user=u password=p dbname=jansevak sslmode=disable"
	if dsn != want {
		t.Errorf("DSN() = %q, want %q", dsn, want)
	}
}
