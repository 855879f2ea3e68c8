package dictionary

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	sq "github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/iabetor/toneo/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var entryColumns = []string{"simplified", "traditional", "pinyin", "tones", "definitions", "hsk_level"}

// insertBatchSize 每条 INSERT 语句的最大行数（6 列，远低于 SQLite 变量上限）。
const insertBatchSize = 500

// Store 是 CC-CEDICT 的 SQLite 存储。
// 进程启动时打开一次，按引用传给分析流水线，退出时关闭。
type Store struct {
	db   *sql.DB
	path string
}

// Open 打开或创建词典数据库并执行迁移。
// dbPath 为空时使用 ./data/cedict.db。
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = filepath.Join("data", "cedict.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("创建数据库目录失败: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("打开数据库失败: %w", err)
	}

	// WAL 模式下读请求互不阻塞
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("设置 WAL 模式失败: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Infof("[dictionary] 词典数据库已打开: %s", dbPath)
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("读取迁移脚本失败: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys)
	if err != nil {
		return fmt.Errorf("创建迁移器失败: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	for _, r := range results {
		logger.Debugf("[dictionary] 已执行迁移 %s (%s)", r.Source.Path, r.Duration)
	}
	return nil
}

// Path 返回数据库文件路径。
func (s *Store) Path() string {
	return s.path
}

// Ping 检查数据库连接。
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 关闭数据库连接。
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Lookup 按简体字精确查找，最多返回一条。没有时返回 ErrNotFound。
func (s *Store) Lookup(ctx context.Context, word string) (*Entry, error) {
	query, args, err := sq.Select(entryColumns...).
		From("entries").
		Where(sq.Eq{"simplified": word}).
		OrderBy("id").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("构建查询失败: %w", err)
	}
	return s.queryOne(ctx, query, args...)
}

// LookupAny 按简体或繁体查找，最多返回一条。
func (s *Store) LookupAny(ctx context.Context, word string) (*Entry, error) {
	query, args, err := sq.Select(entryColumns...).
		From("entries").
		Where(sq.Or{sq.Eq{"simplified": word}, sq.Eq{"traditional": word}}).
		OrderBy("id").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("构建查询失败: %w", err)
	}
	return s.queryOne(ctx, query, args...)
}

func (s *Store) queryOne(ctx context.Context, query string, args ...interface{}) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, query, args...)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanEntry 把数据库行转换为经过校验的 Entry。
func scanEntry(row rowScanner) (*Entry, error) {
	var (
		simplified  string
		traditional sql.NullString
		pinyin      string
		tones       string
		definitions sql.NullString
		hsk         sql.NullInt64
	)
	if err := row.Scan(&simplified, &traditional, &pinyin, &tones, &definitions, &hsk); err != nil {
		return nil, err
	}

	e := &Entry{
		Simplified:  simplified,
		Traditional: traditional.String,
		Pinyin:      strings.Join(strings.Fields(pinyin), " "),
		Tones:       ParseTones(tones),
		Definition:  definitions.String,
	}
	if hsk.Valid && hsk.Int64 > 0 {
		e.HSKLevel = int(hsk.Int64)
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("词条数据损坏: %w", err)
	}
	return e, nil
}

// Related 返回与 simplified 首字相同的其他词，按 HSK 等级降序、词长升序。
func (s *Store) Related(ctx context.Context, simplified string, limit int) ([]string, error) {
	first, size := utf8.DecodeRuneInString(simplified)
	if size == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 5
	}

	query, args, err := sq.Select("simplified").
		Distinct().
		From("entries").
		Where(sq.Like{"simplified": string(first) + "%"}).
		Where(sq.NotEq{"simplified": simplified}).
		OrderBy("hsk_level DESC", "LENGTH(simplified)").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("构建查询失败: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询相关词失败: %w", err)
	}
	defer rows.Close()

	var related []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		related = append(related, w)
	}
	return related, rows.Err()
}

// Words 返回全部简体词，用于最大匹配分词。
func (s *Store) Words(ctx context.Context) ([]string, error) {
	query, args, err := sq.Select("simplified").Distinct().From("entries").ToSql()
	if err != nil {
		return nil, fmt.Errorf("构建查询失败: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询词表失败: %w", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// Count 返回词条总数。
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0, fmt.Errorf("统计词条失败: %w", err)
	}
	return n, nil
}

// Reset 清空词条表（重新导入前调用）。
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("清空词条失败: %w", err)
	}
	return nil
}

// InsertBatch 在一个事务中写入多条词条，跳过校验失败的词条。
// 返回实际写入的条数。
func (s *Store) InsertBatch(ctx context.Context, entries []Entry) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("开启事务失败: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	inserted := 0
	for start := 0; start < len(entries); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(entries) {
			end = len(entries)
		}

		builder := sq.Insert("entries").Columns(entryColumns...)
		rows := 0
		for _, e := range entries[start:end] {
			if err := e.Validate(); err != nil {
				logger.Debugf("[dictionary] 跳过无效词条: %v", err)
				continue
			}
			builder = builder.Values(
				e.Simplified,
				nullIfEmpty(e.Traditional),
				e.Pinyin,
				FormatTones(e.Tones),
				nullIfEmpty(e.Definition),
				e.HSKLevel,
			)
			rows++
		}
		if rows == 0 {
			continue
		}

		query, args, err := builder.ToSql()
		if err != nil {
			return 0, fmt.Errorf("构建插入语句失败: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("写入词条失败: %w", err)
		}
		inserted += rows
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("提交事务失败: %w", err)
	}
	return inserted, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
