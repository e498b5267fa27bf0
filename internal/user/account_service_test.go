package user

import (
	"context"
	"strings"
	"testing"
	"time"

	"friendlink/internal/auth"
	"friendlink/internal/clock"
	"friendlink/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*AccountService, *MemoryStore, *clock.Manual) {
	t.Helper()
	clk := clock.NewManual(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	store := NewMemoryStore()
	tokens := auth.NewTokenIssuer(auth.Options{
		Secret:     "test",
		Issuer:     "test",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}, clk, nil)
	return NewAccountService(store, tokens, clk, WithHashCost(bcrypt.MinCost)), store, clk
}

func signUp(t *testing.T, svc *AccountService, first, last, email string) *model.User {
	t.Helper()
	u, err := svc.SignUp(context.Background(), &SignUpRequest{
		FirstName: first,
		LastName:  last,
		Email:     email,
		Password:  "pa55word",
	})
	require.NoError(t, err)
	return u
}

func TestSignUp(t *testing.T) {
	svc, store, clk := newTestService(t)
	ctx := context.Background()

	u := signUp(t, svc, "Alice", "Smith", "alice@Example.COM")
	assert.Equal(t, uint(1), u.ID)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsStaff)
	assert.False(t, u.IsSuperuser)
	assert.Equal(t, clk.Now(), u.DateJoined)
	assert.NotEqual(t, "pa55word", u.Password)

	stored, err := store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("pa55word")))
}

func TestSignUpDuplicateEmailIsCaseInsensitive(t *testing.T) {
	svc, _, _ := newTestService(t)
	signUp(t, svc, "Alice", "Smith", "alice@example.com")

	_, err := svc.SignUp(context.Background(), &SignUpRequest{
		FirstName: "Al", LastName: "S", Email: "ALICE@example.com", Password: "x",
	})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestSignUpValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, &SignUpRequest{FirstName: "A", LastName: "B", Email: "not-an-email", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.SignUp(ctx, &SignUpRequest{FirstName: " ", LastName: "B", Email: "a@b.com", Password: "x"})
	assert.ErrorIs(t, err, ErrEmptyField)
}

func TestPasswordLimitCountsBytes(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	// 40 个字符，120 字节
	long := strings.Repeat("日", 40)
	_, err := svc.SignUp(ctx, &SignUpRequest{FirstName: "A", LastName: "B", Email: "wide@x.com", Password: long})
	assert.ErrorIs(t, err, ErrPasswordLong)

	_, err = svc.CreateSuperuser(ctx, "root@x.com", long)
	assert.ErrorIs(t, err, ErrPasswordLong)

	_, err = svc.SignUp(ctx, &SignUpRequest{FirstName: "A", LastName: "B", Email: "edge@x.com", Password: strings.Repeat("a", 72)})
	assert.NoError(t, err)
}

func TestDummyHashMatchesServiceCost(t *testing.T) {
	for _, cost := range []int{bcrypt.MinCost, bcrypt.MinCost + 1} {
		svc := NewAccountService(NewMemoryStore(), nil, clock.Real{}, WithHashCost(cost))
		got, err := bcrypt.Cost(svc.dummyHash)
		require.NoError(t, err)
		assert.Equal(t, cost, got)
	}
}

func TestCreateSuperuser(t *testing.T) {
	svc, _, _ := newTestService(t)

	u, err := svc.CreateSuperuser(context.Background(), "root@example.com", "secret")
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	assert.True(t, u.IsSuperuser)
	assert.True(t, u.IsActive)
}

func TestAuthenticate(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()
	u := signUp(t, svc, "Bob", "Jones", "bob@x.com")

	got, err := svc.Authenticate(ctx, "bob@x.com", "pa55word")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, "bob@x.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@x.com", "pa55word")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	store.users[u.ID].IsActive = false
	_, err = svc.Authenticate(ctx, "bob@x.com", "pa55word")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginIssuesTokensAndStampsLastLogin(t *testing.T) {
	svc, store, clk := newTestService(t)
	ctx := context.Background()
	u := signUp(t, svc, "Bob", "Jones", "bob@x.com")

	clk.Advance(time.Hour)
	pair, err := svc.Login(ctx, &LoginRequest{Email: "bob@x.com", Password: "pa55word"})
	require.NoError(t, err)

	claims, err := svc.tokens.ParseAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	stored, err := store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
	assert.Equal(t, clk.Now(), *stored.LastLogin)
}

func TestSearchUsers(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	caller := signUp(t, svc, "Alina", "Caller", "caller@x.com")
	alice := signUp(t, svc, "Alice", "Smith", "alice@x.com")
	bob := signUp(t, svc, "Bob", "Khalil", "bob@x.com")
	signUp(t, svc, "Carol", "Jones", "carol@x.com")

	t.Run("name substring is case-insensitive and excludes caller", func(t *testing.T) {
		users, err := svc.SearchUsers(ctx, "ALI", caller.ID)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, alice.ID, users[0].ID)
		assert.Equal(t, bob.ID, users[1].ID)
	})

	t.Run("email is exact and case-sensitive", func(t *testing.T) {
		users, err := svc.SearchUsers(ctx, "bob@x.com", caller.ID)
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, bob.ID, users[0].ID)

		users, err = svc.SearchUsers(ctx, "BOB@x.com", caller.ID)
		require.NoError(t, err)
		assert.Empty(t, users)

		users, err = svc.SearchUsers(ctx, "bob@x", caller.ID)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("own email is excluded", func(t *testing.T) {
		users, err := svc.SearchUsers(ctx, "caller@x.com", caller.ID)
		require.NoError(t, err)
		assert.Empty(t, users)
	})

	t.Run("empty query returns nothing", func(t *testing.T) {
		users, err := svc.SearchUsers(ctx, "", caller.ID)
		require.NoError(t, err)
		assert.NotNil(t, users)
		assert.Empty(t, users)
	})
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "John.Doe@example.com", NormalizeEmail(" John.Doe@EXAMPLE.com "))
	assert.Equal(t, "plain", NormalizeEmail("plain"))
}

func TestMemoryStoreFindByIDs(t *testing.T) {
	svc, store, _ := newTestService(t)
	a := signUp(t, svc, "A", "A", "a@x.com")
	b := signUp(t, svc, "B", "B", "b@x.com")

	users, err := store.FindByIDs(context.Background(), []uint{b.ID, 99, a.ID})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, a.ID, users[0].ID)
	assert.Equal(t, b.ID, users[1].ID)

	assert.Equal(t, []Brief{{ID: a.ID, Email: "a@x.com"}, {ID: b.ID, Email: "b@x.com"}}, Briefs(users))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%\_off\\`, escapeLike(`50%_off\`))
}
