package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/regulartim/GreedyBear/internal/core/domain"
	"github.com/regulartim/GreedyBear/internal/core/ports"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const iocColumns = `i.id, i.name, i.scanner, i.payload_request, i.first_seen, i.last_seen,
		i.days_seen, i.number_of_days_seen, i.attack_count, i.interaction_count,
		i.login_attempts, i.destination_ports, i.ip_reputation, i.asn, i.log4j, i.cowrie`

// orderColumns whitelists the columns FindFeed may order by, keeping the
// requested field name out of the SQL text.
var orderColumns = map[string]string{
	"name":                "i.name",
	"first_seen":          "i.first_seen",
	"last_seen":           "i.last_seen",
	"attack_count":        "i.attack_count",
	"interaction_count":   "i.interaction_count",
	"login_attempts":      "i.login_attempts",
	"number_of_days_seen": "i.number_of_days_seen",
}

// FindFeed returns the filtered, ordered, size-limited records with their
// honeypot memberships prefetched in a second query.
func (r *PostgresRepository) FindFeed(ctx context.Context, f ports.FeedFilter) ([]domain.IOC, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conds = append(conds, "i.last_seen >= "+arg(f.LastSeenAfter))
	conds = append(conds, "i.number_of_days_seen >= "+arg(f.MinDaysSeen))

	if f.Log4j {
		conds = append(conds, "i.log4j")
	}
	if f.Cowrie {
		conds = append(conds, "i.cowrie")
	}
	if f.Scanner {
		conds = append(conds, "i.scanner")
	}
	if f.PayloadRequest {
		conds = append(conds, "i.payload_request")
	}
	if f.HoneypotName != "" {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM ioc_honeypots m JOIN honeypots h ON h.id = m.honeypot_id
			WHERE m.ioc_id = i.id AND h.active AND lower(h.name) = lower(`+arg(f.HoneypotName)+`))`)
	}
	if len(f.IncludeReputation) > 0 {
		conds = append(conds, "i.ip_reputation = ANY("+arg(f.IncludeReputation)+")")
	}
	if len(f.ExcludeReputation) > 0 {
		conds = append(conds, "NOT (i.ip_reputation = ANY("+arg(f.ExcludeReputation)+"))")
	}

	// A record observed by a deactivated honeypot leaves every feed.
	conds = append(conds, `NOT EXISTS (
		SELECT 1 FROM ioc_honeypots m JOIN honeypots h ON h.id = m.honeypot_id
		WHERE m.ioc_id = i.id AND NOT h.active)`)

	orderBy, ok := orderColumns[f.OrderBy]
	if !ok {
		orderBy = orderColumns["last_seen"]
		f.Descending = true
	}
	direction := "ASC"
	if f.Descending {
		direction = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM iocs i WHERE %s ORDER BY %s %s, i.id LIMIT %s`,
		iocColumns, strings.Join(conds, " AND "), orderBy, direction, arg(f.Limit))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query IOC feed: %w", err)
	}
	defer rows.Close()

	var iocs []domain.IOC
	for rows.Next() {
		var ioc domain.IOC
		err := rows.Scan(
			&ioc.ID,
			&ioc.Name,
			&ioc.Scanner,
			&ioc.PayloadRequest,
			&ioc.FirstSeen,
			&ioc.LastSeen,
			&ioc.DaysSeen,
			&ioc.NumberOfDaysSeen,
			&ioc.AttackCount,
			&ioc.InteractionCount,
			&ioc.LoginAttempts,
			&ioc.DestinationPorts,
			&ioc.IPReputation,
			&ioc.ASN,
			&ioc.Log4j,
			&ioc.Cowrie,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan IOC: %w", err)
		}
		iocs = append(iocs, ioc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if err := r.prefetchMemberships(ctx, iocs); err != nil {
		return nil, err
	}
	return iocs, nil
}

// prefetchMemberships loads honeypot memberships for all returned records
// in one query, so the renderer never goes back to the store.
func (r *PostgresRepository) prefetchMemberships(ctx context.Context, iocs []domain.IOC) error {
	if len(iocs) == 0 {
		return nil
	}

	ids := make([]int64, len(iocs))
	index := make(map[int64]int, len(iocs))
	for i, ioc := range iocs {
		ids[i] = ioc.ID
		index[ioc.ID] = i
	}

	rows, err := r.db.Query(ctx, `
		SELECT m.ioc_id, h.name, h.active
		FROM ioc_honeypots m JOIN honeypots h ON h.id = m.honeypot_id
		WHERE m.ioc_id = ANY($1)
		ORDER BY m.ioc_id, h.id`, ids)
	if err != nil {
		return fmt.Errorf("failed to query honeypot memberships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			iocID      int64
			membership domain.Membership
		)
		if err := rows.Scan(&iocID, &membership.Name, &membership.Active); err != nil {
			return fmt.Errorf("failed to scan membership: %w", err)
		}
		i := index[iocID]
		iocs[i].Honeypots = append(iocs[i].Honeypots, membership)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating membership rows: %w", err)
	}
	return nil
}

// SaveBatch upserts extracted records, merging counters, observation days
// and destination ports into existing rows.
func (r *PostgresRepository) SaveBatch(ctx context.Context, iocs []domain.IOC) error {
	batch := &pgx.Batch{}

	query := `
		INSERT INTO iocs (name, scanner, payload_request, first_seen, last_seen, days_seen,
			number_of_days_seen, attack_count, interaction_count, login_attempts,
			destination_ports, ip_reputation, asn, log4j, cowrie)
		VALUES ($1, $2, $3, $4, $5, $6, cardinality($6::date[]), $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (name) DO UPDATE SET
			scanner = iocs.scanner OR EXCLUDED.scanner,
			payload_request = iocs.payload_request OR EXCLUDED.payload_request,
			first_seen = LEAST(iocs.first_seen, EXCLUDED.first_seen),
			last_seen = GREATEST(iocs.last_seen, EXCLUDED.last_seen),
			days_seen = ARRAY(SELECT DISTINCT d FROM unnest(iocs.days_seen || EXCLUDED.days_seen) AS d ORDER BY d),
			number_of_days_seen = cardinality(ARRAY(SELECT DISTINCT d FROM unnest(iocs.days_seen || EXCLUDED.days_seen) AS d)),
			attack_count = iocs.attack_count + EXCLUDED.attack_count,
			interaction_count = iocs.interaction_count + EXCLUDED.interaction_count,
			login_attempts = iocs.login_attempts + EXCLUDED.login_attempts,
			destination_ports = ARRAY(SELECT DISTINCT p FROM unnest(iocs.destination_ports || EXCLUDED.destination_ports) AS p ORDER BY p),
			ip_reputation = COALESCE(NULLIF(EXCLUDED.ip_reputation, ''), iocs.ip_reputation),
			asn = COALESCE(EXCLUDED.asn, iocs.asn),
			log4j = iocs.log4j OR EXCLUDED.log4j,
			cowrie = iocs.cowrie OR EXCLUDED.cowrie
	`

	for _, ioc := range iocs {
		batch.Queue(query,
			ioc.Name,
			ioc.Scanner,
			ioc.PayloadRequest,
			ioc.FirstSeen,
			ioc.LastSeen,
			ioc.DaysSeen,
			ioc.AttackCount,
			ioc.InteractionCount,
			ioc.LoginAttempts,
			ioc.DestinationPorts,
			ioc.IPReputation,
			ioc.ASN,
			ioc.Log4j,
			ioc.Cowrie,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()

	for range iocs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to execute batch: %w", err)
		}
	}
	return nil
}
