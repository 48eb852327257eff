package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"questa-search/internal/domain"
	"questa-search/internal/repository/models"
	"questa-search/internal/search"
	"questa-search/internal/util"

	"github.com/jmoiron/sqlx"
)

const questionColumns = `id "id",
		subject "subject",
		topic "topic",
		difficulty "difficulty",
		question_type "question_type",
		title "title",
		body "body",
		tags "tags",
		choices "choices",
		answer "answer",
		explanation "explanation",
		created_at "created_at",
		updated_at "updated_at"`

// QuestionDatabaseAdapter implements domain.QuestionRepository using sqlx.DB
type QuestionDatabaseAdapter struct {
	db      *sqlx.DB
	dialect Dialect
}

// NewQuestionDatabaseAdapter creates a new instance of QuestionDatabaseAdapter
func NewQuestionDatabaseAdapter(db *sqlx.DB, dialect Dialect) domain.QuestionRepository {
	if dialect == "" {
		dialect = DialectSQLite
	}
	return &QuestionDatabaseAdapter{db: db, dialect: dialect}
}

// Search implements domain.QuestionRepository. It reads one row past the page
// to report whether more rows exist.
func (a *QuestionDatabaseAdapter) Search(ctx context.Context, req domain.SearchRequest) ([]*domain.Question, bool, error) {
	query, args := a.buildSearchQuery(req)

	var rows []models.SearchRow
	exec := executorFor(ctx, a.db)
	if err := exec.SelectContext(ctx, &rows, exec.Rebind(query), args...); err != nil {
		return nil, false, fmt.Errorf("failed to search questions: %w", err)
	}

	hasMore := len(rows) > req.Limit
	if hasMore {
		rows = rows[:req.Limit]
	}

	questions := make([]*domain.Question, 0, len(rows))
	for i := range rows {
		questions = append(questions, toDomainQuestion(&rows[i].Question))
	}
	return questions, hasMore, nil
}

func (a *QuestionDatabaseAdapter) buildSearchQuery(req domain.SearchRequest) (string, []interface{}) {
	var (
		sb   strings.Builder
		args []interface{}
	)

	terms := search.Terms(req.Filter.Query)

	sb.WriteString("SELECT ")
	sb.WriteString(questionColumns)
	sb.WriteString(",\n\t\t")
	if len(terms) == 0 {
		sb.WriteString(`0 "relevance"`)
	} else {
		parts := make([]string, 0, len(terms)*3)
		for _, term := range terms {
			pattern := likePattern(term)
			parts = append(parts,
				fmt.Sprintf("CASE WHEN title_lc LIKE ? ESCAPE '\\' THEN %d ELSE 0 END", search.TitleWeight),
				fmt.Sprintf("CASE WHEN body_lc LIKE ? ESCAPE '\\' THEN %d ELSE 0 END", search.BodyWeight),
				fmt.Sprintf("CASE WHEN tags_lc LIKE ? ESCAPE '\\' THEN %d ELSE 0 END", search.TagWeight),
			)
			args = append(args, pattern, pattern, pattern)
		}
		sb.WriteString("(" + strings.Join(parts, " + ") + `) "relevance"`)
	}
	sb.WriteString("\n\tFROM questions\n\tWHERE active = 1")

	f := req.Filter
	if len(f.Subjects) > 0 {
		sb.WriteString(" AND subject IN (" + placeholders(len(f.Subjects)) + ")")
		for _, s := range f.Subjects {
			args = append(args, string(s))
		}
	}
	if len(f.Difficulties) > 0 {
		sb.WriteString(" AND difficulty IN (" + placeholders(len(f.Difficulties)) + ")")
		for _, d := range f.Difficulties {
			args = append(args, d)
		}
	}
	if len(f.Types) > 0 {
		sb.WriteString(" AND question_type IN (" + placeholders(len(f.Types)) + ")")
		for _, t := range f.Types {
			args = append(args, string(t))
		}
	}
	// INSTR keeps the tag rule case-sensitive; LIKE is not in SQLite.
	for _, tag := range f.Tags {
		sb.WriteString(" AND INSTR(tags, ?) > 0")
		args = append(args, tag)
	}
	if len(terms) > 0 {
		conds := make([]string, 0, len(terms))
		for _, term := range terms {
			conds = append(conds, "(title_lc LIKE ? ESCAPE '\\' OR body_lc LIKE ? ESCAPE '\\' OR tags_lc LIKE ? ESCAPE '\\')")
			pattern := likePattern(term)
			args = append(args, pattern, pattern, pattern)
		}
		sb.WriteString(" AND (" + strings.Join(conds, " OR ") + ")")
	}

	sb.WriteString("\n\tORDER BY ")
	sb.WriteString(orderBy(req.Sort, len(terms) > 0))

	clause, pageArgs := a.dialect.paginate(req.Limit+1, req.Offset)
	sb.WriteString(clause)
	args = append(args, pageArgs...)

	return sb.String(), args
}

func orderBy(order domain.SortOrder, hasTerms bool) string {
	switch order {
	case domain.SortCreatedAsc:
		return "created_at ASC"
	case domain.SortDifficultyAsc:
		return "difficulty ASC, created_at DESC"
	case domain.SortDifficultyDesc:
		return "difficulty DESC, created_at DESC"
	case domain.SortRelevance:
		if hasTerms {
			return `"relevance" DESC, created_at DESC`
		}
	}
	return "created_at DESC"
}

// Suggestions implements domain.QuestionRepository. Titles come first, then tags.
func (a *QuestionDatabaseAdapter) Suggestions(ctx context.Context, query string, limit int) ([]string, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < search.MinSuggestionQuery || limit <= 0 {
		return []string{}, nil
	}
	pattern := likePattern(strings.ToLower(query))
	exec := executorFor(ctx, a.db)

	limitClause, limitArgs := a.dialect.first(limit)
	var titles []sql.NullString
	titleQuery := `SELECT DISTINCT title "title" FROM questions
	WHERE active = 1 AND title_lc LIKE ? ESCAPE '\'` + limitClause
	if err := exec.SelectContext(ctx, &titles, exec.Rebind(titleQuery), append([]interface{}{pattern}, limitArgs...)...); err != nil {
		return nil, fmt.Errorf("failed to query title suggestions: %w", err)
	}

	var tagLists []models.StringSlice
	tagQuery := `SELECT tags "tags" FROM questions
	WHERE active = 1 AND tags_lc LIKE ? ESCAPE '\'` + limitClause
	if err := exec.SelectContext(ctx, &tagLists, exec.Rebind(tagQuery), append([]interface{}{pattern}, limitArgs...)...); err != nil {
		return nil, fmt.Errorf("failed to query tag suggestions: %w", err)
	}

	// Reuse the in-process ranking on a corpus built from the two result sets.
	corpus := make([]*domain.Question, 0, len(titles)+len(tagLists))
	for _, t := range titles {
		if t.Valid {
			corpus = append(corpus, &domain.Question{Title: t.String})
		}
	}
	for _, tags := range tagLists {
		corpus = append(corpus, &domain.Question{Tags: tags})
	}
	return search.Suggest(corpus, query, limit), nil
}

// GetQuestionByID implements domain.QuestionRepository
func (a *QuestionDatabaseAdapter) GetQuestionByID(ctx context.Context, id string) (*domain.Question, error) {
	var model models.Question
	query := `SELECT ` + questionColumns + `
	FROM questions
	WHERE id = ? AND active = 1`

	exec := executorFor(ctx, a.db)
	if err := exec.GetContext(ctx, &model, exec.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get question by ID %s: %w", id, err)
	}
	return toDomainQuestion(&model), nil
}

// SaveQuestion implements domain.QuestionRepository. It assigns an ID and
// timestamps when they are missing.
func (a *QuestionDatabaseAdapter) SaveQuestion(ctx context.Context, q *domain.Question) error {
	if q == nil {
		return fmt.Errorf("cannot save nil question")
	}
	now := time.Now().UTC()
	if q.ID == "" {
		q.ID = util.NewULID()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = q.CreatedAt
	}
	m := toModelQuestion(q)

	query := `INSERT INTO questions (
		id, subject, topic, difficulty, question_type, title, body,
		tags, choices, answer, explanation, active, created_at, updated_at,
		title_lc, body_lc, tags_lc
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?, ?)`

	titleLC, bodyLC, tagsLC := searchText(m)
	exec := executorFor(ctx, a.db)
	_, err := exec.ExecContext(ctx, exec.Rebind(query),
		m.ID, m.Subject, m.Topic, m.Difficulty, m.QuestionType, m.Title, m.Body,
		m.Tags, m.Choices, m.Answer, m.Explanation, m.CreatedAt, m.UpdatedAt,
		titleLC, bodyLC, tagsLC,
	)
	if err != nil {
		return fmt.Errorf("failed to save question: %w", err)
	}
	return nil
}

// UpdateQuestion implements domain.QuestionRepository
func (a *QuestionDatabaseAdapter) UpdateQuestion(ctx context.Context, q *domain.Question) error {
	if q == nil {
		return fmt.Errorf("cannot update nil question")
	}
	q.UpdatedAt = time.Now().UTC()
	m := toModelQuestion(q)

	query := `UPDATE questions SET
		subject = ?, topic = ?, difficulty = ?, question_type = ?, title = ?, body = ?,
		tags = ?, choices = ?, answer = ?, explanation = ?, updated_at = ?,
		title_lc = ?, body_lc = ?, tags_lc = ?
	WHERE id = ? AND active = 1`

	titleLC, bodyLC, tagsLC := searchText(m)
	exec := executorFor(ctx, a.db)
	result, err := exec.ExecContext(ctx, exec.Rebind(query),
		m.Subject, m.Topic, m.Difficulty, m.QuestionType, m.Title, m.Body,
		m.Tags, m.Choices, m.Answer, m.Explanation, m.UpdatedAt,
		titleLC, bodyLC, tagsLC, m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update question %s: %w", q.ID, err)
	}
	return requireAffected(result, q.ID)
}

// DeleteQuestion implements domain.QuestionRepository. Rows are deactivated, not removed.
func (a *QuestionDatabaseAdapter) DeleteQuestion(ctx context.Context, id string) error {
	query := `UPDATE questions SET active = 0, updated_at = ? WHERE id = ? AND active = 1`

	exec := executorFor(ctx, a.db)
	result, err := exec.ExecContext(ctx, exec.Rebind(query), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete question %s: %w", id, err)
	}
	return requireAffected(result, id)
}

// Ping implements domain.QuestionRepository
func (a *QuestionDatabaseAdapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func requireAffected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return domain.NewQuestionNotFoundError(id)
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps term for a substring LIKE match, escaping wildcards.
// searchText is what the *_lc columns hold. Text search matches against them
// because SQL LOWER does not fold non-ASCII letters on every backend.
func searchText(m *models.Question) (string, string, models.StringSlice) {
	return strings.ToLower(m.Title.String), strings.ToLower(m.Body), m.Tags.Lower()
}

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func toDomainQuestion(m *models.Question) *domain.Question {
	tags := []string(m.Tags)
	if tags == nil {
		tags = []string{}
	}
	var choices []string
	if len(m.Choices) > 0 {
		choices = []string(m.Choices)
	}
	return &domain.Question{
		ID:          m.ID,
		Subject:     domain.Subject(m.Subject),
		Topic:       util.NullStringToString(m.Topic),
		Difficulty:  m.Difficulty,
		Type:        domain.QuestionType(m.QuestionType),
		Title:       util.NullStringToString(m.Title),
		Body:        m.Body,
		Tags:        tags,
		Choices:     choices,
		Answer:      util.NullStringToString(m.Answer),
		Explanation: util.NullStringToString(m.Explanation),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toModelQuestion(q *domain.Question) *models.Question {
	return &models.Question{
		ID:           q.ID,
		Subject:      string(q.Subject),
		Topic:        util.StringToNullString(q.Topic),
		Difficulty:   q.Difficulty,
		QuestionType: string(q.Type),
		Title:        util.StringToNullString(q.Title),
		Body:         q.Body,
		Tags:         models.StringSlice(q.Tags),
		Choices:      models.StringSlice(q.Choices),
		Answer:       util.StringToNullString(q.Answer),
		Explanation:  util.StringToNullString(q.Explanation),
		CreatedAt:    q.CreatedAt.UTC(),
		UpdatedAt:    q.UpdatedAt.UTC(),
	}
}
