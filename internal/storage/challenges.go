package storage

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/claude/fitlink/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// inviteAlphabet omits 0/O and 1/I so codes survive being read aloud.
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// inviteCodeLen is the fixed invite code length.
const inviteCodeLen = 6

// ErrChallengeNotFound is returned when an invite code matches nothing.
var ErrChallengeNotFound = errors.New("challenge not found")

// NewInviteCode generates a random 6-character invite code.
func NewInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating invite code: %w", err)
	}
	for i, b := range buf {
		buf[i] = inviteAlphabet[int(b)%len(inviteAlphabet)]
	}
	return string(buf), nil
}

// CreateChallenge inserts a challenge with a fresh invite code, retrying
// on the (unlikely) code collision, and enrolls the creator.
func (db *DB) CreateChallenge(ctx context.Context, name, metric string, goal float64, startsAt, endsAt time.Time, createdBy int, displayName string) (*models.ChallengeRow, error) {
	for attempt := 0; attempt < 3; attempt++ {
		code, err := NewInviteCode()
		if err != nil {
			return nil, err
		}

		row := models.ChallengeRow{
			ID:         uuid.New(),
			Name:       name,
			Metric:     metric,
			Goal:       goal,
			InviteCode: code,
			StartsAt:   startsAt,
			EndsAt:     endsAt,
			CreatedBy:  createdBy,
		}

		err = db.Pool.QueryRow(ctx,
			`INSERT INTO challenges (id, name, metric, goal, invite_code, starts_at, ends_at, created_by)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			 RETURNING created_at`,
			row.ID, row.Name, row.Metric, row.Goal, row.InviteCode, row.StartsAt, row.EndsAt, row.CreatedBy,
		).Scan(&row.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return nil, fmt.Errorf("inserting challenge: %w", err)
		}

		if err := db.JoinChallenge(ctx, code, createdBy, displayName); err != nil {
			return nil, err
		}
		return &row, nil
	}
	return nil, fmt.Errorf("invite code collision after 3 attempts")
}

// GetChallengeByCode looks up a challenge by its invite code.
func (db *DB) GetChallengeByCode(ctx context.Context, code string) (*models.ChallengeRow, error) {
	var c models.ChallengeRow
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, metric, goal, invite_code, starts_at, ends_at, created_by, created_at
		 FROM challenges
		 WHERE invite_code = $1`,
		code).Scan(&c.ID, &c.Name, &c.Metric, &c.Goal, &c.InviteCode,
		&c.StartsAt, &c.EndsAt, &c.CreatedBy, &c.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("querying challenge: %w", err)
	}
	return &c, nil
}

// JoinChallenge enrolls a user by invite code. Joining twice is a no-op.
func (db *DB) JoinChallenge(ctx context.Context, code string, userID int, displayName string) error {
	c, err := db.GetChallengeByCode(ctx, code)
	if err != nil {
		return err
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO challenge_participants (challenge_id, user_id, display_name)
		 VALUES ($1,$2,$3)
		 ON CONFLICT DO NOTHING`,
		c.ID, userID, displayName)
	if err != nil {
		return fmt.Errorf("joining challenge: %w", err)
	}
	return nil
}

// ListChallenges returns the challenges a user participates in.
func (db *DB) ListChallenges(ctx context.Context, userID int) ([]models.ChallengeRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT c.id, c.name, c.metric, c.goal, c.invite_code, c.starts_at, c.ends_at, c.created_by, c.created_at
		 FROM challenges c
		 JOIN challenge_participants p ON p.challenge_id = c.id
		 WHERE p.user_id = $1
		 ORDER BY c.starts_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying challenges: %w", err)
	}
	defer rows.Close()

	var result []models.ChallengeRow
	for rows.Next() {
		var c models.ChallengeRow
		if err := rows.Scan(&c.ID, &c.Name, &c.Metric, &c.Goal, &c.InviteCode,
			&c.StartsAt, &c.EndsAt, &c.CreatedBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning challenge: %w", err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// Leaderboard ranks participants by their summed metric over the
// challenge window.
func (db *DB) Leaderboard(ctx context.Context, code string) ([]models.LeaderboardEntry, error) {
	c, err := db.GetChallengeByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT p.user_id, p.display_name, COALESCE(SUM(s.qty), 0) AS total
		 FROM challenge_participants p
		 LEFT JOIN health_samples s
		   ON s.user_id = p.user_id
		  AND s.metric_name = $2
		  AND s.time >= $3 AND s.time < $4
		 WHERE p.challenge_id = $1
		 GROUP BY p.user_id, p.display_name
		 ORDER BY total DESC`,
		c.ID, c.Metric, c.StartsAt, c.EndsAt)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	var result []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.DisplayName, &e.Total); err != nil {
			return nil, fmt.Errorf("scanning leaderboard entry: %w", err)
		}
		e.Rank = len(result) + 1
		result = append(result, e)
	}
	return result, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
