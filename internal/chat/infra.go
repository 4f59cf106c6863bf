package chat

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &repo{db: db}
}

func (r *repo) CreateTicket(ctx context.Context, shopID string) (*Ticket, error) {
	t := &Ticket{ID: uuid.NewString(), ShopID: shopID, Status: "open"}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO tickets (id, shop_id, status)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, t.ID, t.ShopID, t.Status).Scan(&t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *repo) GetTicket(ctx context.Context, id string) (*Ticket, error) {
	var t Ticket
	err := r.db.QueryRowContext(ctx, `
		SELECT id, shop_id, status, created_at
		FROM tickets
		WHERE id = $1
	`, id).Scan(&t.ID, &t.ShopID, &t.Status, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repo) SaveMessage(ctx context.Context, msg *Message) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO messages (ticket_id, sender, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`,
		msg.TicketID,
		string(msg.Sender),
		msg.Text,
	).Scan(&msg.ID, &msg.CreatedAt)
}

func (r *repo) GetTicketMessages(ctx context.Context, ticketID string) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, ticket_id, sender, text, created_at
		FROM messages
		WHERE ticket_id = $1
		ORDER BY created_at ASC, id ASC
	`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var sender string
		if err := rows.Scan(
			&m.ID,
			&m.TicketID,
			&sender,
			&m.Text,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		m.Sender = Sender(sender)
		out = append(out, m)
	}

	return out, rows.Err()
}

func (r *repo) AllowedOrigins(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT origin FROM allowed_origins`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var origin string
		if err := rows.Scan(&origin); err != nil {
			return nil, err
		}
		out = append(out, origin)
	}

	return out, rows.Err()
}
