package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/cookiejwt"
	"github.com/viant/cookiejwt/client"
	"github.com/viant/cookiejwt/refresh"
	"github.com/viant/cookiejwt/server"
	"github.com/viant/cookiejwt/server/auth"
	"github.com/viant/cookiejwt/server/token"
	"golang.org/x/crypto/bcrypt"
)

type testClock struct {
	mux sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.now = c.now.Add(d)
}

// countingHandler counts refresh calls and optionally holds them until gate returns.
type countingHandler struct {
	next      http.Handler
	refreshes atomic.Int32
	gate      func()
}

func (c *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == cookiejwt.DefaultRefreshEndpoint {
		c.refreshes.Add(1)
		if c.gate != nil {
			c.gate()
		}
	}
	c.next.ServeHTTP(w, r)
}

type navigatorRecorder struct {
	mux    sync.Mutex
	routes []string
}

func (n *navigatorRecorder) Navigate(route string) {
	n.mux.Lock()
	defer n.mux.Unlock()
	n.routes = append(n.routes, route)
}

func (n *navigatorRecorder) Routes() []string {
	n.mux.Lock()
	defer n.mux.Unlock()
	return append([]string(nil), n.routes...)
}

type fixture struct {
	srv       *httptest.Server
	clock     *testClock
	counter   *countingHandler
	grants    *auth.MemoryStore
	navigator *navigatorRecorder
	service   *Service
}

func newFixture(t *testing.T) *fixture {
	clock := &testClock{now: time.Now()}
	tokens, err := token.NewManager("test-secret", token.WithClock(clock.Now))
	require.NoError(t, err)
	users := server.NewMemoryUsers(bcrypt.MinCost)
	require.NoError(t, users.Add(server.User{Username: "alice", FirstName: "Alice"}, "wonderland"))
	grants := auth.NewMemoryStore(time.Hour, 24*time.Hour, 0)
	h := server.New(tokens, users, grants, server.WithConfig(server.Config{Cookies: cookieConfigForTests()}))
	h.HandleProtected("/api/items/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _ := server.UserFromContext(r.Context())
		_, _ = w.Write([]byte(user.Username + ":" + strings.TrimPrefix(r.URL.Path, "/api/items/")))
	}))
	counter := &countingHandler{next: h}
	srv := httptest.NewServer(counter)
	t.Cleanup(srv.Close)

	navigator := &navigatorRecorder{}
	httpClient, err := client.New(srv.URL, client.WithLogger(cookiejwt.NopLogger))
	require.NoError(t, err)
	service, err := New(httpClient, nil, navigator, WithLogger(cookiejwt.NopLogger))
	require.NoError(t, err)
	return &fixture{srv: srv, clock: clock, counter: counter, grants: grants, navigator: navigator, service: service}
}

func (f *fixture) login(t *testing.T) {
	require.NoError(t, f.service.Login(context.Background(), NewCredentials("alice", "wonderland")))
	require.True(t, f.service.State().IsAuthenticated())
}

func TestService_Login(t *testing.T) {
	f := newFixture(t)
	var events []EventType
	f.service.State().Subscribe(ObserverFunc(func(event *Event) {
		events = append(events, event.Type)
	}))

	f.login(t)
	snapshot := f.service.State().Snapshot()
	assert.True(t, snapshot.Authenticated)
	assert.False(t, snapshot.Loading)
	assert.Empty(t, snapshot.Error)
	assert.Equal(t, "alice", snapshot.User["username"])
	assert.Equal(t, "Alice", snapshot.User["first_name"])
	assert.Contains(t, events, EventEstablished)
	assert.Equal(t, EventLoading, events[0])
	assert.Equal(t, EventLoading, events[len(events)-1])
}

func TestService_LoginRejected(t *testing.T) {
	f := newFixture(t)
	err := f.service.Login(context.Background(), NewCredentials("alice", "wrong"))
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, cookiejwt.StatusCode(err))
	snapshot := f.service.State().Snapshot()
	assert.False(t, snapshot.Authenticated)
	assert.Equal(t, "no active account found with the given credentials", snapshot.Error)
	assert.EqualValues(t, 0, f.counter.refreshes.Load())
	assert.Empty(t, f.navigator.Routes())
}

func TestService_ExpiredSessionIsRenewedAndReplayed(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.clock.Advance(6 * time.Minute)

	response, err := f.service.Client().Get(context.Background(), "/api/items/42")
	require.NoError(t, err)
	assert.Equal(t, "alice:42", string(response.Body))
	assert.True(t, response.Request.Retried())
	assert.EqualValues(t, 1, f.counter.refreshes.Load())
	assert.Equal(t, refresh.Idle, f.service.Coordinator().State())
	assert.Empty(t, f.navigator.Routes())
}

func TestService_ConcurrentExpiredRequestsRenewOnce(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.clock.Advance(6 * time.Minute)
	f.counter.gate = func() {
		deadline := time.Now().Add(2 * time.Second)
		for f.service.Coordinator().Pending() < 2 && time.Now().Before(deadline) {
			time.Sleep(time.Millisecond)
		}
	}

	const n = 3
	var wg sync.WaitGroup
	wg.Add(n)
	bodies := make(chan string, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		id := string(rune('a' + i))
		go func() {
			defer wg.Done()
			response, err := f.service.Client().Get(context.Background(), "/api/items/"+id)
			if err != nil {
				errs <- err
				return
			}
			bodies <- string(response.Body)
		}()
	}
	wg.Wait()
	close(bodies)
	close(errs)

	for err := range errs {
		t.Fatalf("unexpected error: %v", err)
	}
	var actual []string
	for body := range bodies {
		actual = append(actual, body)
	}
	assert.ElementsMatch(t, []string{"alice:a", "alice:b", "alice:c"}, actual)
	assert.EqualValues(t, 1, f.counter.refreshes.Load())
}

func TestService_RenewalFailureRedirectsOnce(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	var cleared atomic.Int32
	f.service.State().Subscribe(ObserverFunc(func(event *Event) {
		if event.Type == EventCleared {
			cleared.Add(1)
		}
	}))
	f.clock.Advance(25 * time.Hour)

	_, err := f.service.Client().Get(context.Background(), "/api/items/1")
	require.Error(t, err)
	assert.True(t, refresh.IsRenewalFailure(err))
	assert.Equal(t, http.StatusUnauthorized, cookiejwt.StatusCode(err))
	assert.Equal(t, []string{"/login"}, f.navigator.Routes())
	assert.False(t, f.service.State().IsAuthenticated())
	assert.EqualValues(t, 1, cleared.Load())
	assert.EqualValues(t, 1, f.counter.refreshes.Load())
}

func TestService_NonAuthFailurePassesThrough(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	_, err := f.service.Client().Get(context.Background(), "/missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, cookiejwt.StatusCode(err))
	assert.EqualValues(t, 0, f.counter.refreshes.Load())
}

func TestService_Logout(t *testing.T) {
	t.Run("server accepts", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)
		f.service.Logout(context.Background())
		assert.False(t, f.service.State().IsAuthenticated())
		assert.Empty(t, f.navigator.Routes())
		assert.Nil(t, f.service.FetchUser(context.Background()))
		assert.Equal(t, []string{"/login"}, f.navigator.Routes())
	})
	t.Run("server unreachable", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)
		f.srv.Close()
		f.service.Logout(context.Background())
		snapshot := f.service.State().Snapshot()
		assert.False(t, snapshot.Authenticated)
		assert.Empty(t, snapshot.Error)
	})
	t.Run("expired access is renewed first", func(t *testing.T) {
		f := newFixture(t)
		f.login(t)
		f.clock.Advance(6 * time.Minute)
		f.service.Logout(context.Background())
		assert.False(t, f.service.State().IsAuthenticated())
		assert.EqualValues(t, 1, f.counter.refreshes.Load())
		assert.Error(t, f.service.Refresh(context.Background()))
	})
}

func TestService_ManualRefresh(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.service.Refresh(context.Background()))
	f.login(t)
	assert.NoError(t, f.service.Refresh(context.Background()))
	assert.EqualValues(t, 2, f.counter.refreshes.Load())
}

func TestNew_Options(t *testing.T) {
	c, err := client.New("https://api.example.com")
	require.NoError(t, err)
	service, err := New(c, &Options{RefreshEndpoint: "/token/refresh/", MaxPending: 8}, nil)
	require.NoError(t, err)
	options := service.Options()
	assert.Equal(t, "https://api.example.com", options.BaseURL)
	assert.Equal(t, cookiejwt.DefaultLoginEndpoint, options.LoginEndpoint)
	assert.Equal(t, cookiejwt.DefaultLogoutEndpoint, options.LogoutEndpoint)
	assert.Equal(t, "/token/refresh/", options.RefreshEndpoint)
	assert.Equal(t, cookiejwt.DefaultUserEndpoint, options.UserEndpoint)
	assert.Equal(t, cookiejwt.DefaultLoginRoute, options.LoginRoute)

	_, err = New(nil, nil, nil)
	assert.ErrorIs(t, err, ErrClientRequired)
	_, err = Setup(&Options{}, nil, nil)
	assert.ErrorIs(t, err, cookiejwt.ErrBaseURLRequired)
	_, err = Setup(nil, nil, nil)
	assert.ErrorIs(t, err, cookiejwt.ErrBaseURLRequired)
}

func TestSetup_SessionOptions(t *testing.T) {
	f := newFixture(t)
	state := NewState()
	service, err := Setup(&Options{BaseURL: f.srv.URL}, nil,
		[]client.Option{client.WithLogger(cookiejwt.NopLogger)},
		WithState(state), WithLogger(cookiejwt.NopLogger))
	require.NoError(t, err)
	assert.Same(t, state, service.State())
	assert.Equal(t, f.srv.URL, service.Client().BaseURL())

	require.NoError(t, service.Login(context.Background(), NewCredentials("alice", "wonderland")))
	assert.True(t, state.IsAuthenticated())
}
