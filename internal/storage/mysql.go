package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"boliche-os/internal/config"
	"boliche-os/internal/logger"
	"boliche-os/internal/models"
	"boliche-os/internal/pricing"
)

type MySQLStore struct {
	db  *sql.DB
	log *logger.Logger
}

func NewMySQLStore(cfg config.DatabaseConfig, log *logger.Logger) (*MySQLStore, error) {
	log.LogDatabase("CONNECT", "mysql", fmt.Sprintf("Connecting to MySQL at %s:%s", cfg.Host, cfg.Port))

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Error("DATABASE", "Failed to open MySQL connection: "+err.Error())
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	if err := db.Ping(); err != nil {
		log.Error("DATABASE", "Failed to ping MySQL: "+err.Error())
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &MySQLStore{db: db, log: log}

	if err := store.initTables(); err != nil {
		log.Error("DATABASE", "Failed to initialize tables: "+err.Error())
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	log.LogDatabase("SUCCESS", "mysql", "MySQL connection established and tables initialized")
	return store, nil
}

func (s *MySQLStore) Close() error {
	return s.db.Close()
}

func (s *MySQLStore) initTables() error {
	s.log.LogDatabase("MIGRATE", "mysql", "Creating venue tables if not exist")

	statements := []string{
		`CREATE TABLE IF NOT EXISTS lanes (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(64) NOT NULL,
			type VARCHAR(8) NOT NULL,
			status VARCHAR(16) NOT NULL,
			current_session_id VARCHAR(64),
			maintenance_reason VARCHAR(255),
			is_maintenance_paused BOOLEAN NOT NULL DEFAULT FALSE,
			total_usage_ms BIGINT NOT NULL DEFAULT 0,
			INDEX idx_status (status)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS sessions (
			id VARCHAR(64) PRIMARY KEY,
			lane_id VARCHAR(36) NOT NULL,
			comanda VARCHAR(8) NOT NULL,
			customer_name VARCHAR(128),
			opened_by VARCHAR(128) NOT NULL,
			opened_by_id VARCHAR(36) NOT NULL,
			start_time DATETIME(3) NOT NULL,
			end_time DATETIME(3),
			maintenance_ms BIGINT NOT NULL DEFAULT 0,
			last_maintenance_start DATETIME(3),
			is_active BOOLEAN NOT NULL,
			discount_minutes INT NOT NULL DEFAULT 0,
			is_birthday BOOLEAN NOT NULL DEFAULT FALSE,
			lane_type VARCHAR(8) NOT NULL,
			receipt_number BIGINT NOT NULL DEFAULT 0,
			price_per_minute DECIMAL(10,2),
			gross_value DECIMAL(10,2),
			discount_value DECIMAL(10,2),
			final_value DECIMAL(10,2),
			INDEX idx_lane_id (lane_id),
			INDEX idx_comanda_active (comanda, is_active),
			INDEX idx_end_time (end_time)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS reservations (
			id VARCHAR(36) PRIMARY KEY,
			lane_id VARCHAR(36),
			lane_ids TEXT,
			customer_name VARCHAR(128) NOT NULL,
			lane_count INT NOT NULL DEFAULT 1,
			start_time DATETIME(3) NOT NULL,
			end_time DATETIME(3) NOT NULL,
			observation TEXT,
			status VARCHAR(16) NOT NULL,
			INDEX idx_start_time (start_time),
			INDEX idx_res_status (status)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS waiting_list (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(128) NOT NULL,
			lanes_requested INT NOT NULL DEFAULT 1,
			table_tag VARCHAR(32),
			comanda VARCHAR(8),
			vehicle VARCHAR(32),
			joined_at DATETIME(3) NOT NULL,
			estimated_wait_minutes INT NOT NULL DEFAULT 0,
			INDEX idx_joined_at (joined_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS audit_log (
			id VARCHAR(36) PRIMARY KEY,
			ts DATETIME(3) NOT NULL,
			user_id VARCHAR(36) NOT NULL,
			user_name VARCHAR(128) NOT NULL,
			action VARCHAR(48) NOT NULL,
			context TEXT,
			lane_id VARCHAR(36),
			details TEXT,
			INDEX idx_ts (ts),
			INDEX idx_action (action)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS holidays (
			date VARCHAR(10) PRIMARY KEY,
			name VARCHAR(128) NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(128) NOT NULL,
			role VARCHAR(16) NOT NULL,
			pin VARCHAR(16) NOT NULL,
			UNIQUE INDEX idx_pin (pin)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS settings (
			name VARCHAR(32) PRIMARY KEY,
			value TEXT NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,

		`CREATE TABLE IF NOT EXISTS counters (
			name VARCHAR(32) PRIMARY KEY,
			value BIGINT NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	s.log.LogDatabase("SUCCESS", "mysql", "Venue tables ready")
	return nil
}

// ---- lanes ----

const laneColumns = `id, name, type, status, current_session_id, maintenance_reason, is_maintenance_paused, total_usage_ms`

func (s *MySQLStore) SaveLane(lane *models.Lane) error {
	s.log.LogDatabase("INSERT", "lanes", fmt.Sprintf("Saving lane %s", lane.ID))

	query := `INSERT INTO lanes (` + laneColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query,
		lane.ID, lane.Name, lane.Type, lane.Status,
		nullString(lane.CurrentSessionID), nullString(lane.MaintenanceReason),
		lane.IsMaintenancePaused, lane.TotalUsage.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to save lane: %w", err)
	}
	return nil
}

func (s *MySQLStore) GetLane(id string) (*models.Lane, error) {
	row := s.db.QueryRow(`SELECT `+laneColumns+` FROM lanes WHERE id = ?`, id)
	lane, err := scanLane(row)
	if err == sql.ErrNoRows {
		return nil, ErrLaneNotFound
	}
	return lane, err
}

func (s *MySQLStore) UpdateLane(lane *models.Lane) error {
	query := `UPDATE lanes SET name = ?, type = ?, status = ?, current_session_id = ?,
		maintenance_reason = ?, is_maintenance_paused = ?, total_usage_ms = ? WHERE id = ?`
	result, err := s.db.Exec(query,
		lane.Name, lane.Type, lane.Status,
		nullString(lane.CurrentSessionID), nullString(lane.MaintenanceReason),
		lane.IsMaintenancePaused, lane.TotalUsage.Milliseconds(), lane.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update lane: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		if _, err := s.GetLane(lane.ID); err != nil {
			return ErrLaneNotFound
		}
	}
	return nil
}

func (s *MySQLStore) ListLanes() ([]*models.Lane, error) {
	rows, err := s.db.Query(`SELECT ` + laneColumns + ` FROM lanes ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list lanes: %w", err)
	}
	defer rows.Close()

	var lanes []*models.Lane
	for rows.Next() {
		lane, err := scanLane(rows)
		if err != nil {
			return nil, err
		}
		lanes = append(lanes, lane)
	}
	return lanes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLane(row rowScanner) (*models.Lane, error) {
	var lane models.Lane
	var sessionID, reason sql.NullString
	var usageMs int64

	err := row.Scan(&lane.ID, &lane.Name, &lane.Type, &lane.Status,
		&sessionID, &reason, &lane.IsMaintenancePaused, &usageMs)
	if err != nil {
		return nil, err
	}
	lane.CurrentSessionID = sessionID.String
	lane.MaintenanceReason = reason.String
	lane.TotalUsage = time.Duration(usageMs) * time.Millisecond
	return &lane, nil
}

// ---- sessions ----

const sessionColumns = `id, lane_id, comanda, customer_name, opened_by, opened_by_id,
	start_time, end_time, maintenance_ms, last_maintenance_start, is_active,
	discount_minutes, is_birthday, lane_type, receipt_number,
	price_per_minute, gross_value, discount_value, final_value`

func (s *MySQLStore) SaveSession(session *models.Session) error {
	s.log.LogDatabase("INSERT", "sessions", fmt.Sprintf("Saving session %s", session.ID))

	query := `INSERT INTO sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query, sessionArgs(session)...)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *MySQLStore) UpdateSession(session *models.Session) error {
	query := `UPDATE sessions SET lane_id = ?, comanda = ?, customer_name = ?, opened_by = ?,
		opened_by_id = ?, start_time = ?, end_time = ?, maintenance_ms = ?,
		last_maintenance_start = ?, is_active = ?, discount_minutes = ?, is_birthday = ?,
		lane_type = ?, receipt_number = ?, price_per_minute = ?, gross_value = ?,
		discount_value = ?, final_value = ? WHERE id = ?`

	args := append(sessionArgs(session)[1:], session.ID)
	if _, err := s.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

func sessionArgs(session *models.Session) []interface{} {
	return []interface{}{
		session.ID, session.LaneID, session.Comanda, nullString(session.CustomerName),
		session.OpenedBy, session.OpenedByID, session.StartTime, nullTime(session.EndTime),
		session.MaintenanceTimeTotal.Milliseconds(), nullTime(session.LastMaintenanceStart),
		session.IsActive, session.DiscountMinutes, session.IsBirthdayDiscount,
		session.LaneType, session.ReceiptNumber,
		session.PricePerMinute.StringFixed(2), session.GrossValue.StringFixed(2),
		session.DiscountValue.StringFixed(2), session.FinalValue.StringFixed(2),
	}
}

func (s *MySQLStore) GetSession(id string) (*models.Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	return session, err
}

func (s *MySQLStore) GetActiveSessionByComanda(comanda string) (*models.Session, error) {
	row := s.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE comanda = ? AND is_active = TRUE`, comanda)
	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, ErrSessionNotFound
	}
	return session, err
}

func (s *MySQLStore) ListActiveSessions() ([]*models.Session, error) {
	return s.querySessions(`SELECT ` + sessionColumns + ` FROM sessions WHERE is_active = TRUE ORDER BY start_time`)
}

func (s *MySQLStore) ListSessionsClosedBetween(from, to time.Time) ([]*models.Session, error) {
	return s.querySessions(`SELECT `+sessionColumns+` FROM sessions
		WHERE is_active = FALSE AND end_time BETWEEN ? AND ? ORDER BY end_time`, from, to)
}

func (s *MySQLStore) querySessions(query string, args ...interface{}) ([]*models.Session, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func scanSession(row rowScanner) (*models.Session, error) {
	var session models.Session
	var customer sql.NullString
	var endTime, lastMaint sql.NullTime
	var maintMs int64
	var rate, gross, discount, final sql.NullString

	err := row.Scan(&session.ID, &session.LaneID, &session.Comanda, &customer,
		&session.OpenedBy, &session.OpenedByID, &session.StartTime, &endTime,
		&maintMs, &lastMaint, &session.IsActive, &session.DiscountMinutes,
		&session.IsBirthdayDiscount, &session.LaneType, &session.ReceiptNumber,
		&rate, &gross, &discount, &final)
	if err != nil {
		return nil, err
	}

	session.CustomerName = customer.String
	session.MaintenanceTimeTotal = time.Duration(maintMs) * time.Millisecond
	if endTime.Valid {
		t := endTime.Time
		session.EndTime = &t
	}
	if lastMaint.Valid {
		t := lastMaint.Time
		session.LastMaintenanceStart = &t
	}
	session.PricePerMinute = parseDecimal(rate)
	session.GrossValue = parseDecimal(gross)
	session.DiscountValue = parseDecimal(discount)
	session.FinalValue = parseDecimal(final)
	return &session, nil
}

// ---- reservations ----

const reservationColumns = `id, lane_id, lane_ids, customer_name, lane_count, start_time, end_time, observation, status`

func (s *MySQLStore) SaveReservation(res *models.Reservation) error {
	s.log.LogDatabase("INSERT", "reservations", fmt.Sprintf("Saving reservation %s", res.ID))

	laneIDs, err := json.Marshal(res.LaneIDs)
	if err != nil {
		return fmt.Errorf("failed to encode lane ids: %w", err)
	}
	query := `INSERT INTO reservations (` + reservationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.Exec(query,
		res.ID, nullString(res.LaneID), string(laneIDs), res.CustomerName,
		res.LaneCount, res.StartTime, res.EndTime, nullString(res.Observation), res.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	return nil
}

func (s *MySQLStore) UpdateReservation(res *models.Reservation) error {
	laneIDs, err := json.Marshal(res.LaneIDs)
	if err != nil {
		return fmt.Errorf("failed to encode lane ids: %w", err)
	}
	query := `UPDATE reservations SET lane_id = ?, lane_ids = ?, customer_name = ?,
		lane_count = ?, start_time = ?, end_time = ?, observation = ?, status = ? WHERE id = ?`
	_, err = s.db.Exec(query,
		nullString(res.LaneID), string(laneIDs), res.CustomerName,
		res.LaneCount, res.StartTime, res.EndTime, nullString(res.Observation), res.Status, res.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reservation: %w", err)
	}
	return nil
}

func (s *MySQLStore) GetReservation(id string) (*models.Reservation, error) {
	row := s.db.QueryRow(`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	res, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	return res, err
}

func (s *MySQLStore) ListReservations() ([]*models.Reservation, error) {
	rows, err := s.db.Query(`SELECT ` + reservationColumns + ` FROM reservations ORDER BY start_time`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*models.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

func scanReservation(row rowScanner) (*models.Reservation, error) {
	var res models.Reservation
	var laneID, laneIDs, observation sql.NullString

	err := row.Scan(&res.ID, &laneID, &laneIDs, &res.CustomerName, &res.LaneCount,
		&res.StartTime, &res.EndTime, &observation, &res.Status)
	if err != nil {
		return nil, err
	}
	res.LaneID = laneID.String
	res.Observation = observation.String
	if laneIDs.Valid && laneIDs.String != "" {
		if err := json.Unmarshal([]byte(laneIDs.String), &res.LaneIDs); err != nil {
			return nil, fmt.Errorf("failed to decode lane ids: %w", err)
		}
	}
	return &res, nil
}

// ---- waiting list ----

func (s *MySQLStore) SaveWaiting(entry *models.WaitingCustomer) error {
	query := `INSERT INTO waiting_list (id, name, lanes_requested, table_tag, comanda, vehicle, joined_at, estimated_wait_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query,
		entry.ID, entry.Name, entry.LanesRequested, nullString(entry.Table),
		nullString(entry.Comanda), nullString(entry.Vehicle), entry.JoinedAt, entry.EstimatedWaitMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to save waiting entry: %w", err)
	}
	return nil
}

func (s *MySQLStore) UpdateWaiting(entry *models.WaitingCustomer) error {
	query := `UPDATE waiting_list SET name = ?, lanes_requested = ?, table_tag = ?, comanda = ?,
		vehicle = ?, estimated_wait_minutes = ? WHERE id = ?`
	_, err := s.db.Exec(query,
		entry.Name, entry.LanesRequested, nullString(entry.Table), nullString(entry.Comanda),
		nullString(entry.Vehicle), entry.EstimatedWaitMinutes, entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update waiting entry: %w", err)
	}
	return nil
}

func (s *MySQLStore) DeleteWaiting(id string) error {
	result, err := s.db.Exec(`DELETE FROM waiting_list WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete waiting entry: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrWaitingNotFound
	}
	return nil
}

func (s *MySQLStore) ListWaiting() ([]*models.WaitingCustomer, error) {
	rows, err := s.db.Query(`SELECT id, name, lanes_requested, table_tag, comanda, vehicle, joined_at, estimated_wait_minutes
		FROM waiting_list ORDER BY joined_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list waiting entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.WaitingCustomer
	for rows.Next() {
		var entry models.WaitingCustomer
		var table, comanda, vehicle sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Name, &entry.LanesRequested, &table,
			&comanda, &vehicle, &entry.JoinedAt, &entry.EstimatedWaitMinutes); err != nil {
			return nil, err
		}
		entry.Table = table.String
		entry.Comanda = comanda.String
		entry.Vehicle = vehicle.String
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// ---- audit log ----

func (s *MySQLStore) AppendAudit(entry *models.AuditEntry) error {
	var details interface{}
	if entry.Details != nil {
		data, err := json.Marshal(entry.Details)
		if err != nil {
			return fmt.Errorf("failed to encode audit details: %w", err)
		}
		details = string(data)
	}

	query := `INSERT INTO audit_log (id, ts, user_id, user_name, action, context, lane_id, details)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query,
		entry.ID, entry.Timestamp, entry.UserID, entry.UserName,
		entry.Action, entry.Context, nullString(entry.LaneID), details,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (s *MySQLStore) ListAudit(limit, offset int) ([]*models.AuditEntry, error) {
	rows, err := s.db.Query(`SELECT id, ts, user_id, user_name, action, context, lane_id, details
		FROM audit_log ORDER BY ts DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		var laneID, details sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Timestamp, &entry.UserID, &entry.UserName,
			&entry.Action, &entry.Context, &laneID, &details); err != nil {
			return nil, err
		}
		entry.LaneID = laneID.String
		if details.Valid && details.String != "" {
			var d models.AuditDetails
			if err := json.Unmarshal([]byte(details.String), &d); err != nil {
				return nil, fmt.Errorf("failed to decode audit details: %w", err)
			}
			entry.Details = &d
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// ---- tariffs and calendar ----

func (s *MySQLStore) GetPricingRules() (*pricing.Rules, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE name = 'pricing_rules'`).Scan(&value)
	if err == sql.ErrNoRows {
		return pricing.DefaultRules(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing rules: %w", err)
	}

	var rules pricing.Rules
	if err := json.Unmarshal([]byte(value), &rules); err != nil {
		return nil, fmt.Errorf("failed to decode pricing rules: %w", err)
	}
	return &rules, nil
}

func (s *MySQLStore) SavePricingRules(rules *pricing.Rules) error {
	data, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to encode pricing rules: %w", err)
	}
	query := `INSERT INTO settings (name, value) VALUES ('pricing_rules', ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value)`
	if _, err := s.db.Exec(query, string(data)); err != nil {
		return fmt.Errorf("failed to save pricing rules: %w", err)
	}
	s.log.LogDatabase("UPDATE", "settings", "Pricing rules saved")
	return nil
}

func (s *MySQLStore) ListHolidays() ([]*models.Holiday, error) {
	rows, err := s.db.Query(`SELECT date, name FROM holidays ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []*models.Holiday
	for rows.Next() {
		var h models.Holiday
		if err := rows.Scan(&h.Date, &h.Name); err != nil {
			return nil, err
		}
		holidays = append(holidays, &h)
	}
	return holidays, rows.Err()
}

func (s *MySQLStore) SaveHoliday(h *models.Holiday) error {
	query := `INSERT INTO holidays (date, name) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE name = VALUES(name)`
	if _, err := s.db.Exec(query, h.Date, h.Name); err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

func (s *MySQLStore) DeleteHoliday(date string) error {
	if _, err := s.db.Exec(`DELETE FROM holidays WHERE date = ?`, date); err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	return nil
}

// ---- operators ----

func (s *MySQLStore) GetUserByPIN(pin string) (*models.User, error) {
	var user models.User
	err := s.db.QueryRow(`SELECT id, name, role, pin FROM users WHERE pin = ?`, pin).
		Scan(&user.ID, &user.Name, &user.Role, &user.PIN)
	if err == sql.ErrNoRows {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (s *MySQLStore) SaveUser(user *models.User) error {
	query := `INSERT INTO users (id, name, role, pin) VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE name = VALUES(name), role = VALUES(role), pin = VALUES(pin)`
	if _, err := s.db.Exec(query, user.ID, user.Name, user.Role, user.PIN); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// ---- counters ----

// NextReceiptNumber bumps the receipt counter atomically via the
// LAST_INSERT_ID trick so no two closes ever share a number.
func (s *MySQLStore) NextReceiptNumber() (int64, error) {
	query := `INSERT INTO counters (name, value) VALUES ('receipt', LAST_INSERT_ID(1))
		ON DUPLICATE KEY UPDATE value = LAST_INSERT_ID(value + 1)`
	result, err := s.db.Exec(query)
	if err != nil {
		return 0, fmt.Errorf("failed to bump receipt counter: %w", err)
	}
	n, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read receipt counter: %w", err)
	}
	return n, nil
}

// ---- helpers ----

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func parseDecimal(v sql.NullString) decimal.Decimal {
	if !v.Valid || v.String == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return decimal.Zero
	}
	return d
}
