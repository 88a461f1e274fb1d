package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/FocuswithJustin/lectio/core/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS catalog_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS books (
	ord             INTEGER PRIMARY KEY,
	short_name      TEXT NOT NULL UNIQUE,
	name            TEXT NOT NULL DEFAULT '',
	osis            TEXT NOT NULL DEFAULT '',
	section         TEXT NOT NULL DEFAULT '',
	chapter_name    TEXT NOT NULL DEFAULT '',
	cs_name         TEXT NOT NULL DEFAULT '',
	cs_chapter_name TEXT NOT NULL DEFAULT '',
	chapters        INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS chapters (
	book INTEGER NOT NULL REFERENCES books(ord),
	ord  INTEGER NOT NULL,
	size INTEGER NOT NULL,
	PRIMARY KEY (book, ord)
);
`

// SaveCatalog writes c into db, replacing any catalog already stored there.
// Lazily sourced verse tables are resolved before writing.
func SaveCatalog(ctx context.Context, db *sql.DB, c *Catalog) error {
	tables := make([][]int, len(c.books))
	for i := range c.books {
		verses, err := c.verses(i + 1)
		if err != nil {
			return err
		}
		tables[i] = verses
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin catalog transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "create catalog schema")
	}
	for _, stmt := range []string{`DELETE FROM chapters`, `DELETE FROM books`, `DELETE FROM catalog_meta`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "clear catalog")
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO catalog_meta (key, value) VALUES ('name', ?), ('fingerprint', ?)`,
		c.name, c.Fingerprint()); err != nil {
		return errors.Wrap(err, "write catalog meta")
	}

	bookStmt, err := tx.PrepareContext(ctx, `INSERT INTO books
		(ord, short_name, name, osis, section, chapter_name, cs_name, cs_chapter_name, chapters)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare book insert")
	}
	defer bookStmt.Close()

	chapStmt, err := tx.PrepareContext(ctx, `INSERT INTO chapters (book, ord, size) VALUES (?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare chapter insert")
	}
	defer chapStmt.Close()

	for i, b := range c.books {
		if _, err := bookStmt.ExecContext(ctx, b.Ordinal, b.ShortName, b.Name, b.OSIS, string(b.Section),
			b.ChapterName, b.CSName, b.CSChapterName, b.Chapters); err != nil {
			return errors.Wrapf(err, "insert book %d", b.Ordinal)
		}
		for ch, size := range tables[i] {
			if _, err := chapStmt.ExecContext(ctx, b.Ordinal, ch+1, size); err != nil {
				return errors.Wrapf(err, "insert book %d chapter %d", b.Ordinal, ch+1)
			}
		}
	}
	return tx.Commit()
}

// LoadCatalog reads a catalog saved by SaveCatalog. When lazy is set only
// the book records are read and verse counts are fetched per book on first
// use through a SQLChapterSource; db must then stay open for the lifetime
// of the catalog.
func LoadCatalog(ctx context.Context, db *sql.DB, lazy bool) (*Catalog, error) {
	var name string
	err := db.QueryRowContext(ctx, `SELECT value FROM catalog_meta WHERE key = 'name'`).Scan(&name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrap(err, "read catalog meta")
	}

	rows, err := db.QueryContext(ctx, `SELECT ord, short_name, name, osis, section, chapter_name,
		cs_name, cs_chapter_name, chapters FROM books ORDER BY ord`)
	if err != nil {
		return nil, errors.Wrap(err, "query books")
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		var b Book
		var section string
		if err := rows.Scan(&b.Ordinal, &b.ShortName, &b.Name, &b.OSIS, &section,
			&b.ChapterName, &b.CSName, &b.CSChapterName, &b.Chapters); err != nil {
			return nil, errors.Wrap(err, "scan book")
		}
		b.Section = Section(section)
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate books")
	}
	if len(books) == 0 {
		return nil, errors.NewNotFound("catalog", "books table is empty")
	}

	opts := []Option{WithName(name)}
	if lazy {
		opts = append(opts, WithChapterSource(&SQLChapterSource{DB: db}))
		return New(books, opts...)
	}

	tables, err := readAllChapters(ctx, db)
	if err != nil {
		return nil, err
	}
	for i := range books {
		books[i].Verses = tables[books[i].Ordinal]
	}
	return New(books, opts...)
}

func readAllChapters(ctx context.Context, db *sql.DB) (map[int][]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT book, ord, size FROM chapters ORDER BY book, ord`)
	if err != nil {
		return nil, errors.Wrap(err, "query chapters")
	}
	defer rows.Close()

	tables := make(map[int][]int)
	for rows.Next() {
		var book, ord, size int
		if err := rows.Scan(&book, &ord, &size); err != nil {
			return nil, errors.Wrap(err, "scan chapter")
		}
		if ord != len(tables[book])+1 {
			return nil, errors.NewParse("catalog database", "",
				fmt.Sprintf("book %d: chapter %d out of sequence", book, ord))
		}
		tables[book] = append(tables[book], size)
	}
	return tables, rows.Err()
}

// SQLChapterSource serves verse counts from the chapters table.
type SQLChapterSource struct {
	DB *sql.DB
}

// ChapterSizes returns the verse count of every chapter of book in order.
func (s *SQLChapterSource) ChapterSizes(book int) ([]int, error) {
	rows, err := s.DB.QueryContext(context.Background(),
		`SELECT size FROM chapters WHERE book = ? ORDER BY ord`, book)
	if err != nil {
		return nil, errors.Wrapf(err, "query chapters of book %d", book)
	}
	defer rows.Close()

	var sizes []int
	for rows.Next() {
		var size int
		if err := rows.Scan(&size); err != nil {
			return nil, errors.Wrapf(err, "scan chapter of book %d", book)
		}
		sizes = append(sizes, size)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(sizes) == 0 {
		return nil, errors.NewNotFound("chapters", fmt.Sprintf("book %d", book))
	}
	return sizes, nil
}
