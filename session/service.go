package session

import (
	"context"
	"errors"
	"net/http"

	"github.com/viant/cookiejwt"
	"github.com/viant/cookiejwt/client"
	"github.com/viant/cookiejwt/refresh"
)

// ErrClientRequired is returned when a service is built without a client.
var ErrClientRequired = errors.New("session: client is required")

const defaultLoginError = "login failed"

// Credentials is the login payload; username and password plus any extra fields the server expects.
type Credentials map[string]interface{}

// NewCredentials creates username/password credentials.
func NewCredentials(username, password string) Credentials {
	return Credentials{"username": username, "password": password}
}

// Service keeps a cookie-carried session alive for one client.
type Service struct {
	client      *client.Client
	options     Options
	navigator   Navigator
	coordinator *refresh.Coordinator
	renewer     *endpoints
	state       *State
	logger      cookiejwt.Logger
}

// Option mutates Service.
type Option func(*Service)

// WithState shares an existing state object.
func WithState(state *State) Option {
	return func(s *Service) {
		if state != nil {
			s.state = state
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger cookiejwt.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Login posts credentials to the login endpoint, then loads the user.
// The login call is not intercepted: rejected credentials are not an expired session.
func (s *Service) Login(ctx context.Context, credentials Credentials) error {
	done := s.state.beginLoading()
	defer done()
	s.state.setError("")

	request, err := s.client.NewRequest(http.MethodPost, s.options.LoginEndpoint, credentials)
	if err == nil {
		_, err = s.client.Execute(ctx, request)
	}
	if err != nil {
		message := cookiejwt.Detail(err)
		if message == "" {
			message = defaultLoginError
		}
		s.state.setError(message)
		return err
	}
	s.FetchUser(ctx)
	return nil
}

// Logout asks the server to end the session and always clears local state.
// Server-side failures (e.g. an already expired session) are logged, never returned.
func (s *Service) Logout(ctx context.Context) {
	done := s.state.beginLoading()
	defer done()
	s.state.setError("")

	if _, err := s.client.Post(ctx, s.options.LogoutEndpoint, nil); err != nil {
		s.logger.Debugf("logout request failed, clearing local session: %v", err)
	}
	s.state.clear()
}

// FetchUser loads the authenticated user; any failure clears the session. It returns the user or nil.
func (s *Service) FetchUser(ctx context.Context) User {
	done := s.state.beginLoading()
	defer done()

	response, err := s.client.Get(ctx, s.options.UserEndpoint)
	if err != nil {
		s.logger.Debugf("failed to fetch user: %v", err)
		s.state.clear()
		return nil
	}
	user := User{}
	if err = response.Decode(&user); err != nil {
		s.logger.Errorf("failed to decode user: %v", err)
		s.state.clear()
		return nil
	}
	s.state.setUser(user)
	return s.state.User()
}

// Refresh renews the access token using the refresh cookie.
func (s *Service) Refresh(ctx context.Context) error {
	return s.renewer.Renew(ctx)
}

// State returns the session state.
func (s *Service) State() *State {
	return s.state
}

// Client returns the underlying client; requests sent with it are renewed transparently.
func (s *Service) Client() *client.Client {
	return s.client
}

// Coordinator returns the refresh coordinator bound to the client.
func (s *Service) Coordinator() *refresh.Coordinator {
	return s.coordinator
}

// Options returns the effective options.
func (s *Service) Options() Options {
	return s.options
}

func (s *Service) onAuthFailure() {
	s.state.clear()
	if s.navigator != nil {
		s.navigator.Navigate(s.options.LoginRoute)
	}
}

// New binds a session service to httpClient: it builds the refresh coordinator and registers it as a failure handler.
func New(httpClient *client.Client, options *Options, navigator Navigator, opts ...Option) (*Service, error) {
	if httpClient == nil {
		return nil, ErrClientRequired
	}
	effective := Options{}
	if options != nil {
		effective = *options
	}
	if effective.BaseURL == "" {
		effective.BaseURL = httpClient.BaseURL()
	}
	effective.Init()
	s := &Service{
		client:    httpClient,
		options:   effective,
		navigator: navigator,
		state:     NewState(),
		logger:    cookiejwt.DefaultLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.renewer = &endpoints{client: httpClient, refresh: effective.RefreshEndpoint}
	coordinatorOptions := []refresh.Option{
		refresh.WithAuthFailure(s.onAuthFailure),
		refresh.WithRenewTimeout(effective.RenewTimeout),
		refresh.WithLogger(s.logger),
	}
	if effective.MaxPending > 0 {
		coordinatorOptions = append(coordinatorOptions, refresh.WithMaxPending(effective.MaxPending))
	}
	s.coordinator = refresh.New(s.renewer, coordinatorOptions...)
	httpClient.Use(s.coordinator)
	return s, nil
}

// Setup creates a client for options.BaseURL with clientOptions and binds a session service to it.
func Setup(options *Options, navigator Navigator, clientOptions []client.Option, opts ...Option) (*Service, error) {
	if options == nil {
		return nil, cookiejwt.ErrBaseURLRequired
	}
	if err := options.Validate(); err != nil {
		return nil, err
	}
	httpClient, err := client.New(options.BaseURL, clientOptions...)
	if err != nil {
		return nil, err
	}
	return New(httpClient, options, navigator, opts...)
}
