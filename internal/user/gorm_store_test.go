package user

import (
	"context"
	"regexp"
	"testing"
	"time"

	"friendlink/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var userColumns = []string{"id", "email", "first_name", "last_name", "is_active"}

func newMockStore(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)
	return NewGormStore(db), mock
}

func TestGormCreateDuplicateEmail(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `users`")).
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'a@x.com' for key 'idx_users_email'"})
	mock.ExpectRollback()

	err := s.Create(context.Background(), &model.User{Email: "a@x.com", IsActive: true, DateJoined: time.Now()})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormFindByEmailIsExact(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStore(t)
	query := regexp.QuoteMeta("SELECT * FROM `users` WHERE email = ?")

	mock.ExpectQuery(query).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(2, "bob@x.com", "Bob", "Jones", true))
	u, err := s.FindByEmail(ctx, "bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, uint(2), u.ID)

	// 不区分大小写的排序规则会命中，但邮箱大小写不一致
	mock.ExpectQuery(query).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(2, "bob@x.com", "Bob", "Jones", true))
	_, err = s.FindByEmail(ctx, "BOB@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	mock.ExpectQuery(query).
		WillReturnRows(sqlmock.NewRows(userColumns))
	_, err = s.FindByEmail(ctx, "ghost@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSearchByEmailFiltersCase(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE email = ? AND id <> ? ORDER BY id ASC")).
		WithArgs("BOB@x.com", 1).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(2, "bob@x.com", "Bob", "Jones", true))

	users, err := s.SearchByEmail(context.Background(), "BOB@x.com", 1)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormEmailExistsIgnoresCase(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT count(*) FROM `users` WHERE LOWER(email) = LOWER(?)")).
		WithArgs("Bob@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := s.EmailExists(context.Background(), "Bob@x.com")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSearchByNameEscapesWildcards(t *testing.T) {
	s, mock := newMockStore(t)
	pattern := `%50\%\_off%`
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `users` WHERE (LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?) AND id <> ? ORDER BY id ASC")).
		WithArgs(pattern, pattern, 1).
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(3, "c@x.com", "50%_Off", "Deal", true))

	users, err := s.SearchByName(context.Background(), "50%_OFF", 1)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, uint(3), users[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTouchLastLogin(t *testing.T) {
	s, mock := newMockStore(t)
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `users` SET `last_login`=? WHERE id = ?")).
		WithArgs(at, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.TouchLastLogin(context.Background(), 4, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}
