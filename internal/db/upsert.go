package db

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Upsert describes a single-row INSERT ... ON CONFLICT statement.
type Upsert struct {
	Table        string   // may be schema-qualified, e.g. "crm.accounts"
	Columns      []string // inserted columns, bound as $1..$n in order
	ConflictKeys []string
	// UpdateCols are overwritten on conflict. Nil means every non-key column;
	// an empty non-nil slice means DO NOTHING.
	UpdateCols []string
}

// SQL renders the statement.
func (u Upsert) SQL() string {
	placeholders := make([]string, len(u.Columns))
	for i := range u.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) ",
		sanitizeTable(u.Table),
		quoteAndJoin(u.Columns),
		strings.Join(placeholders, ", "),
		quoteAndJoin(u.ConflictKeys),
	)

	update := u.UpdateCols
	if update == nil {
		keys := make(map[string]bool, len(u.ConflictKeys))
		for _, k := range u.ConflictKeys {
			keys[k] = true
		}
		for _, c := range u.Columns {
			if !keys[c] {
				update = append(update, c)
			}
		}
	}
	if len(update) == 0 {
		b.WriteString("DO NOTHING")
		return b.String()
	}

	sets := make([]string, len(update))
	for i, c := range update {
		col := pgx.Identifier{c}.Sanitize()
		sets[i] = col + " = EXCLUDED." + col
	}
	b.WriteString("DO UPDATE SET ")
	b.WriteString(strings.Join(sets, ", "))
	return b.String()
}

func sanitizeTable(table string) string {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return pgx.Identifier{schema, name}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
