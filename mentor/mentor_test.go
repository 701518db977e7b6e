package mentor_test

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"mentorship/apperr"
	"mentorship/mentor"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMentor(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := mentor.NewAccessor(db).WithHashCost(bcrypt.MinCost)
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	insertQuery := `INSERT INTO users (id, username, password_hash, created_at) VALUES ($1, $2, $3, $4)`
	selectByName := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`

	t.Run("register", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(insertQuery)).
			WithArgs(sqlmock.AnyArg(), "ana", sqlmock.AnyArg(), now).
			WillReturnResult(sqlmock.NewResult(1, 1))

		m, err := a.Register(t.Context(), mentor.Registration{
			Username:        "ana",
			Password:        "secret1",
			PasswordConfirm: "secret1",
		}, now)
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, m.ID)
		assert.Equal(t, "ana", m.Username)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte("secret1")))

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("register - short password", func(t *testing.T) {
		_, err := a.Register(t.Context(), mentor.Registration{
			Username:        "ana",
			Password:        "123",
			PasswordConfirm: "123",
		}, now)
		v, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, "password must have 6 or more characters", v.Message())
	})

	t.Run("register - confirmation mismatch", func(t *testing.T) {
		_, err := a.Register(t.Context(), mentor.Registration{
			Username:        "ana",
			Password:        "secret1",
			PasswordConfirm: "secret2",
		}, now)
		v, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, []string{"password_confirm must match password"}, v.Fields()["password_confirm"])
	})

	t.Run("register - duplicate username", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(insertQuery)).
			WithArgs(sqlmock.AnyArg(), "ana", sqlmock.AnyArg(), now).
			WillReturnError(&pq.Error{Code: "23505"})

		_, err := a.Register(t.Context(), mentor.Registration{
			Username:        "ana",
			Password:        "secret1",
			PasswordConfirm: "secret1",
		}, now)
		v, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, "provide a valid value for the field username", v.Message())

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("authenticate", func(t *testing.T) {
		id := uuid.New()
		hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
		require.NoError(t, err)

		mock.ExpectQuery(regexp.QuoteMeta(selectByName)).
			WithArgs("ana").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
				AddRow(id.String(), "ana", string(hash), now))

		m, err := a.Authenticate(t.Context(), "ana", "secret1")
		require.NoError(t, err)
		assert.Equal(t, id, m.ID)

		mock.ExpectQuery(regexp.QuoteMeta(selectByName)).
			WithArgs("ana").
			WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
				AddRow(id.String(), "ana", string(hash), now))

		_, err = a.Authenticate(t.Context(), "ana", "wrong-password")
		require.ErrorIs(t, err, apperr.ErrUnauthorized)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("authenticate - unknown user", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(selectByName)).
			WithArgs("nobody").
			WillReturnError(sql.ErrNoRows)

		_, err := a.Authenticate(t.Context(), "nobody", "secret1")
		require.ErrorIs(t, err, apperr.ErrUnauthorized)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("get mentor - no rows", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, password_hash, created_at FROM users WHERE id = $1`)).
			WithArgs(id).
			WillReturnError(sql.ErrNoRows)

		_, err := a.GetMentor(t.Context(), id)
		require.ErrorIs(t, err, apperr.ErrNotFound)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNavigators(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	a := mentor.NewAccessor(db)
	mentorID := uuid.New()

	t.Run("create navigator", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO navigators (id, nome, user_id) VALUES ($1, $2, $3)`)).
			WithArgs(sqlmock.AnyArg(), "Carla", mentorID).
			WillReturnResult(sqlmock.NewResult(1, 1))

		nav, err := a.CreateNavigator(t.Context(), mentor.Navigator{Name: "Carla", MentorID: mentorID})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, nav.ID)
		assert.Equal(t, "Carla", nav.Name)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("create navigator - missing name", func(t *testing.T) {
		_, err := a.CreateNavigator(t.Context(), mentor.Navigator{MentorID: mentorID})
		v, ok := apperr.AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, "nome is required", v.Message())
	})

	t.Run("list navigators", func(t *testing.T) {
		navID := uuid.New()
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, nome, user_id FROM navigators WHERE user_id = $1 ORDER BY nome`)).
			WithArgs(mentorID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "nome", "user_id"}).AddRow(navID.String(), "Carla", mentorID.String()))

		navs, err := a.ListNavigators(t.Context(), mentorID)
		require.NoError(t, err)
		require.Len(t, navs, 1)
		assert.Equal(t, navID, navs[0].ID)

		require.NoError(t, mock.ExpectationsWereMet())
	})
}
