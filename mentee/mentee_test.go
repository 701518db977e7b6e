package mentee_test

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"mentorship/apperr"
	"mentorship/mentee"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	existsQuery    = `SELECT EXISTS(SELECT 1 FROM mentorados WHERE token = $1)`
	navigatorQuery = `SELECT EXISTS(SELECT 1 FROM navigators WHERE id = $1 AND user_id = $2)`
	insertQuery    = `INSERT INTO mentorados (id, nome, foto, estagio, navigator_id, user_id, criado_em, token) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	byTokenQuery   = `SELECT id, nome, foto, estagio, navigator_id, user_id, criado_em, token FROM mentorados WHERE token = $1`
	byIDQuery      = `SELECT id, nome, foto, estagio, navigator_id, user_id, criado_em, token FROM mentorados WHERE id = $1`
)

var menteeColumns = []string{"id", "nome", "foto", "estagio", "navigator_id", "user_id", "criado_em", "token"}

// sequence returns the given tokens one by one.
func sequence(tokens ...string) mentee.TokenSource {
	i := 0
	return func() (string, error) {
		t := tokens[i%len(tokens)]
		i++
		return t, nil
	}
}

func TestRandomToken(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		token, err := mentee.RandomToken()
		require.NoError(t, err)
		assert.Len(t, token, 11)
		assert.Regexp(t, `^[A-Za-z0-9_-]+$`, token)
		assert.False(t, seen[token])
		seen[token] = true
	}
}

func TestGenerateUniqueToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	t.Run("retries on collision", func(t *testing.T) {
		a := mentee.NewAccessor(db).WithTokenSource(sequence("taken1", "taken2", "fresh"))

		mock.ExpectQuery(regexp.QuoteMeta(existsQuery)).WithArgs("taken1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery(regexp.QuoteMeta(existsQuery)).WithArgs("taken2").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery(regexp.QuoteMeta(existsQuery)).WithArgs("fresh").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		token, err := a.GenerateUniqueToken(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "fresh", token)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("sequential generations never reuse an existing token", func(t *testing.T) {
		candidates := []string{"a", "c", "b", "c", "d", "a", "e"}
		a := mentee.NewAccessor(db).WithTokenSource(sequence(candidates...))

		// replay what the directory answers for each candidate while tokens get persisted
		directory := map[string]bool{"a": true, "b": true}
		generations := 0
		for _, c := range candidates {
			mock.ExpectQuery(regexp.QuoteMeta(existsQuery)).WithArgs(c).
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(directory[c]))
			if !directory[c] {
				directory[c] = true
				generations++
			}
		}

		existing := map[string]bool{"a": true, "b": true}
		for range generations {
			token, err := a.GenerateUniqueToken(t.Context())
			require.NoError(t, err)
			assert.False(t, existing[token], "token %q reused", token)
			existing[token] = true
		}
		assert.Len(t, existing, 5)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("gives up after too many collisions", func(t *testing.T) {
		a := mentee.NewAccessor(db).WithTokenSource(sequence("dup"))
		for range 10 {
			mock.ExpectQuery(regexp.QuoteMeta(existsQuery)).WithArgs("dup").
				WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		}

		_, err := a.GenerateUniqueToken(t.Context())
		require.Error(t, err)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("source error", func(t *testing.T) {
		a := mentee.NewAccessor(db).WithTokenSource(func() (string, error) {
			return "", errors.New("no entropy")
		})

		_, err := a.GenerateUniqueToken(t.Context())
		require.ErrorContains(t, err, "no entropy")
	})
}

func TestCreateMentee(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := mentee.NewAccessor(db).WithTokenSource(sequence("tok-123"))
	mentorID := uuid.New()
	now := time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("token generated before insert", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(existsQuery)).WithArgs("tok-123").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectExec(regexp.QuoteMeta(insertQuery)).
			WithArgs(sqlmock.AnyArg(), "Joana", nil, "E1", nil, mentorID, today, "tok-123").
			WillReturnResult(sqlmock.NewResult(1, 1))

		m, err := a.CreateMentee(t.Context(), mentee.Mentee{Name: "Joana", MentorID: mentorID}, now)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, m.ID)
		assert.Equal(t, "tok-123", m.Token)
		assert.Equal(t, mentee.StageE1, m.Stage)
		assert.Equal(t, today, m.CreatedAt)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("navigator must belong to the mentor", func(t *testing.T) {
		navID := uuid.New()
		mock.ExpectQuery(regexp.QuoteMeta(navigatorQuery)).WithArgs(navID, mentorID).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := a.CreateMentee(t.Context(), mentee.Mentee{
			Name:        "Joana",
			Stage:       mentee.StageE2,
			NavigatorID: uuid.NullUUID{UUID: navID, Valid: true},
			MentorID:    mentorID,
		}, now)
		v, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, "select a valid navigator", v.Message())

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid stage", func(t *testing.T) {
		_, err := a.CreateMentee(t.Context(), mentee.Mentee{Name: "Joana", Stage: "E9", MentorID: mentorID}, now)
		v, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Contains(t, v.Fields(), "estagio")
	})
}

func TestResolveToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := mentee.NewAccessor(db)
	menteeID := uuid.New()
	mentorID := uuid.New()
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("known token", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(byTokenQuery)).WithArgs("abc123").
			WillReturnRows(sqlmock.NewRows(menteeColumns).
				AddRow(menteeID.String(), "Joana", nil, "E2", nil, mentorID.String(), created, "abc123"))

		m, err := a.ResolveToken(t.Context(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, menteeID, m.ID)
		assert.Equal(t, mentorID, m.MentorID)
		assert.Equal(t, mentee.StageE2, m.Stage)
		assert.False(t, m.NavigatorID.Valid)
		assert.Empty(t, m.Photo)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown token", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(byTokenQuery)).WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		_, err := a.ResolveToken(t.Context(), "nope")
		require.ErrorIs(t, err, apperr.ErrNotFound)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty token never hits the database", func(t *testing.T) {
		_, err := a.ResolveToken(t.Context(), "")
		require.ErrorIs(t, err, apperr.ErrNotFound)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMenteeQueries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := mentee.NewAccessor(db)
	mentorID := uuid.New()
	menteeID := uuid.New()
	navID := uuid.New()
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("get mentee of another mentor", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(byIDQuery)).WithArgs(menteeID).
			WillReturnRows(sqlmock.NewRows(menteeColumns).
				AddRow(menteeID.String(), "Joana", "fotos/joana.png", "E1", navID.String(), uuid.NewString(), created, "abc"))

		_, err := a.GetMenteeOfMentor(t.Context(), menteeID, mentorID)
		require.ErrorIs(t, err, apperr.ErrNotFound)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list mentees", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, nome, foto, estagio, navigator_id, user_id, criado_em, token FROM mentorados WHERE user_id = $1 ORDER BY nome`)).
			WithArgs(mentorID).
			WillReturnRows(sqlmock.NewRows(menteeColumns).
				AddRow(menteeID.String(), "Joana", "fotos/joana.png", "E1", navID.String(), mentorID.String(), created, "abc"))

		mentees, err := a.ListMentees(t.Context(), mentorID)
		require.NoError(t, err)
		require.Len(t, mentees, 1)
		assert.Equal(t, "fotos/joana.png", mentees[0].Photo)
		assert.Equal(t, uuid.NullUUID{UUID: navID, Valid: true}, mentees[0].NavigatorID)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count by stage fills missing stages", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT estagio, COUNT(*) FROM mentorados WHERE user_id = $1 GROUP BY estagio`)).
			WithArgs(mentorID).
			WillReturnRows(sqlmock.NewRows([]string{"estagio", "count"}).AddRow("E1", 3).AddRow("E3", 1))

		counts, err := a.CountByStage(t.Context(), mentorID)
		require.NoError(t, err)
		assert.Equal(t, []mentee.StageCount{
			{Stage: mentee.StageE1, Label: "10-100K", Count: 3},
			{Stage: mentee.StageE2, Label: "101-500K", Count: 0},
			{Stage: mentee.StageE3, Label: "501-1M", Count: 1},
		}, counts)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("set photo on a missing mentee", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE mentorados SET foto = $1 WHERE id = $2`)).
			WithArgs("fotos/x.png", menteeID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := a.SetPhoto(t.Context(), menteeID, "fotos/x.png")
		require.ErrorIs(t, err, apperr.ErrNotFound)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}
