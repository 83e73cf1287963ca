package auth_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/Marcella2706/task2-GeekHaven/internal/auth"
	"github.com/Marcella2706/task2-GeekHaven/internal/domain"
	"github.com/Marcella2706/task2-GeekHaven/internal/queue"
	"github.com/Marcella2706/task2-GeekHaven/internal/security"
)

var ctx = context.Background()

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t, true)
	cases := []struct {
		name string
		in   auth.RegisterInput
		msg  string
	}{
		{"missing name", auth.RegisterInput{Email: "a@x.com", Password: "secret1"}, auth.MsgRegisterRequired},
		{"blank email", auth.RegisterInput{FullName: "A", Email: "  ", Password: "secret1"}, auth.MsgRegisterRequired},
		{"missing password", auth.RegisterInput{FullName: "A", Email: "a@x.com"}, auth.MsgRegisterRequired},
		{"short password", auth.RegisterInput{FullName: "A", Email: "a@x.com", Password: "12345"}, auth.MsgPasswordTooShort},
		{"five multibyte chars", auth.RegisterInput{FullName: "A", Email: "a@x.com", Password: "ééééé"}, auth.MsgPasswordTooShort},
		{"over 72 bytes", auth.RegisterInput{FullName: "A", Email: "a@x.com", Password: strings.Repeat("p", 80)}, auth.MsgPasswordTooLong},
		{"bad role", auth.RegisterInput{FullName: "A", Email: "a@x.com", Password: "secret1", Role: "admin"}, auth.MsgBadRole},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.svc.Register(ctx, tc.in)
			wantKind(t, err, domain.KindValidation, tc.msg)
		})
	}

	// six multibyte characters are enough
	if _, err := e.svc.Register(ctx, auth.RegisterInput{FullName: "A", Email: "a@x.com", Password: "éééééé"}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.svc.Login(ctx, "a@x.com", "éééééé"); err != nil {
		t.Fatal(err)
	}
}

func TestRegister_EmailIsCaseSensitive(t *testing.T) {
	e := newEnv(t, true)
	upper := register(t, e, "A@x.com", "secret1", "buyer")
	lower := register(t, e, "a@x.com", "secret2", "seller")
	if upper.User.ID == lower.User.ID || upper.User.Email != "A@x.com" || lower.User.Email != "a@x.com" {
		t.Fatalf("want two accounts, got %#v and %#v", upper.User, lower.User)
	}

	s, err := e.svc.Login(ctx, "A@x.com", "secret1")
	if err != nil || s.User.ID != upper.User.ID {
		t.Fatalf("login A@x.com: %v", err)
	}
	_, err = e.svc.Login(ctx, "a@x.com", "secret1")
	wantKind(t, err, domain.KindValidation, auth.MsgInvalidCreds)
	_, err = e.svc.Login(ctx, "a@X.COM", "secret2")
	wantKind(t, err, domain.KindNotFound, auth.MsgUserNotFound)
}

func TestRegister_BuyerDefaults(t *testing.T) {
	e := newEnv(t, true)
	s := register(t, e, "a@x.com ", "secret1", "")

	if s.User.Role != domain.RoleBuyer || s.User.Email != "a@x.com" {
		t.Fatalf("unexpected view: %#v", s.User)
	}
	if s.User.SellerInfo != nil {
		t.Fatal("buyer must not carry seller info")
	}
	if s.User.IsVerified {
		t.Fatal("local accounts start unverified")
	}
	if !s.User.Preferences.Notifications.Email || s.User.Preferences.Notifications.SMS {
		t.Fatalf("preference defaults wrong: %#v", s.User.Preferences)
	}

	c, err := security.ParseAccess(testSecret, s.Token)
	if err != nil || c.UserID != s.User.ID || c.Role != "buyer" {
		t.Fatalf("token claims: %#v %v", c, err)
	}

	u, _ := e.store.FindLocalUser(ctx, "a@x.com")
	if u.PasswordHash == "" || u.PasswordHash == "secret1" || !u.IsActive || u.LastLogin == nil {
		t.Fatalf("stored user wrong: %#v", u)
	}

	evs := e.pub.wait(t, 1)
	if evs[0].key != queue.KeyUserRegistered {
		t.Fatalf("want %s, got %s", queue.KeyUserRegistered, evs[0].key)
	}
}

func TestRegister_SellerDefaults(t *testing.T) {
	e := newEnv(t, true)
	s, err := e.svc.Register(ctx, auth.RegisterInput{
		FullName: "Shop Owner", Email: "s@x.com", Password: "secret1", Role: "seller",
		Phone: "+91 99", Location: "Delhi",
	})
	if err != nil {
		t.Fatal(err)
	}
	si := s.User.SellerInfo
	if si == nil {
		t.Fatal("seller info missing")
	}
	if si.BusinessName != "Shop Owner" || si.ResponseTime != "< 2 hours" || si.Rating != 0 ||
		len(si.Badges) != 1 || si.Badges[0] != "New Seller" {
		t.Fatalf("seller defaults wrong: %#v", si)
	}
	if si.Policies.Returns != "7-day return policy" || si.Policies.Warranty != "6 months warranty" ||
		!strings.HasPrefix(si.Policies.Shipping, "Free shipping on orders above") {
		t.Fatalf("policies wrong: %#v", si.Policies)
	}
	if s.User.Phone != "+91 99" || s.User.Location != "Delhi" {
		t.Fatalf("optional fields lost: %#v", s.User)
	}
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	e := newEnv(t, true)
	register(t, e, "a@x.com", "secret1", "buyer")

	for _, role := range []string{"buyer", "seller"} {
		_, err := e.svc.Register(ctx, auth.RegisterInput{FullName: "B", Email: "a@x.com", Password: "secret2", Role: role})
		wantKind(t, err, domain.KindConflict, auth.MsgUserExists)
	}
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	e := newEnv(t, true)
	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, confl int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.svc.Register(ctx, auth.RegisterInput{FullName: "R", Email: "race@x.com", Password: "secret1"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case isConflict(err):
				confl++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if ok != 1 || confl != n-1 {
		t.Fatalf("want exactly one winner, got ok=%d conflicts=%d", ok, confl)
	}
}

func isConflict(err error) bool {
	de, ok := domain.AsError(err)
	return ok && de.Kind == domain.KindConflict
}

func TestLogin(t *testing.T) {
	e := newEnv(t, true)
	reg := register(t, e, "a@x.com", "secret1", "buyer")

	_, err := e.svc.Login(ctx, "a@x.com", "wrong")
	wantKind(t, err, domain.KindValidation, auth.MsgInvalidCreds)

	_, err = e.svc.Login(ctx, "", "secret1")
	wantKind(t, err, domain.KindValidation, auth.MsgLoginRequired)

	_, err = e.svc.Login(ctx, "nobody@x.com", "secret1")
	wantKind(t, err, domain.KindNotFound, auth.MsgUserNotFound)

	s, err := e.svc.Login(ctx, "a@x.com", "secret1")
	if err != nil {
		t.Fatal(err)
	}
	if s.Token == "" || s.Token == reg.Token {
		t.Fatal("login must issue a new token")
	}
	evs := e.pub.wait(t, 2)
	if evs[len(evs)-1].key != queue.KeyUserLoggedIn && evs[0].key != queue.KeyUserLoggedIn {
		t.Fatalf("no login event in %#v", evs)
	}
}

func TestLogin_DeactivatedNeverGetsToken(t *testing.T) {
	e := newEnv(t, true)
	register(t, e, "a@x.com", "secret1", "buyer")
	if _, err := e.store.SetActive(ctx, "a@x.com", false); err != nil {
		t.Fatal(err)
	}
	s, err := e.svc.Login(ctx, "a@x.com", "secret1")
	if s != nil {
		t.Fatal("deactivated account received a session")
	}
	wantKind(t, err, domain.KindForbidden, auth.MsgDeactivated)
}

func TestLogin_GoogleAccountIsNotLocal(t *testing.T) {
	e := newEnv(t, true)
	if _, err := e.svc.GoogleAuth(ctx, "tok-gina", ""); err != nil {
		t.Fatal(err)
	}
	_, err := e.svc.Login(ctx, "gina@example.com", "anything")
	wantKind(t, err, domain.KindNotFound, auth.MsgUserNotFound)
}

func TestRefresh(t *testing.T) {
	e := newEnv(t, true)
	reg := register(t, e, "a@x.com", "secret1", "seller")

	s, err := e.svc.Refresh(ctx, reg.User.ID)
	if err != nil {
		t.Fatal(err)
	}
	if s.User.ID != reg.User.ID || s.User.Role != domain.RoleSeller {
		t.Fatalf("refresh returned another user: %#v", s.User)
	}

	_, err = e.svc.Refresh(ctx, "000000000000000000000000")
	wantKind(t, err, domain.KindNotFound, auth.MsgNotFoundInactive)
	_, err = e.svc.Refresh(ctx, "not-an-id")
	wantKind(t, err, domain.KindNotFound, auth.MsgNotFoundInactive)

	_, _ = e.store.SetActive(ctx, "a@x.com", false)
	_, err = e.svc.Refresh(ctx, reg.User.ID)
	wantKind(t, err, domain.KindNotFound, auth.MsgNotFoundInactive)
}

func TestAuthenticate(t *testing.T) {
	e := newEnv(t, true)
	reg := register(t, e, "a@x.com", "secret1", "buyer")

	c, err := e.svc.Authenticate(reg.Token)
	if err != nil || c.UserID != reg.User.ID {
		t.Fatalf("authenticate: %#v %v", c, err)
	}
	_, err = e.svc.Authenticate(reg.Token + "x")
	wantKind(t, err, domain.KindUnauthorized, auth.MsgTokenFailed)
}
