package api_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/trace/noop"

	"rhystmorgan/phonebook/internal/api"
	"rhystmorgan/phonebook/internal/api/apitest"
	"rhystmorgan/phonebook/internal/metrics"
	"rhystmorgan/phonebook/internal/models"
)

const testAPIKey = "test-key"

type ClientSuite struct {
	suite.Suite
	fake    *apitest.Server
	server  *httptest.Server
	metrics *metrics.Metrics
	client  *api.Client
	repo    *api.Repository
}

func (s *ClientSuite) SetupTest() {
	s.fake = apitest.New(testAPIKey, nil)
	s.server = httptest.NewServer(s.fake.Handler())
	s.metrics = metrics.New()

	client, err := api.NewClient(api.Config{BaseURL: s.server.URL + "/", APIKey: testAPIKey, Timeout: 2 * time.Second},
		api.WithMetrics(s.metrics),
		api.WithTracer(noop.NewTracerProvider().Tracer("test")),
	)
	s.Require().NoError(err)
	s.client = client
	s.repo = api.NewRepository(client)
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) writeImage(name string) string {
	path := filepath.Join(s.T().TempDir(), name)
	s.Require().NoError(os.WriteFile(path, []byte("\xff\xd8\xff\xe0fake"), 0600))
	return path
}

func (s *ClientSuite) requireType(err error, expected api.ErrorType) {
	s.Require().Error(err)
	var apiErr *api.Error
	s.Require().True(errors.As(err, &apiErr), "expected *api.Error, got %T", err)
	s.Equal(expected, apiErr.Type)
}

func (s *ClientSuite) TestNewClientRequiresAPIKey() {
	_, err := api.NewClient(api.Config{BaseURL: s.server.URL})
	s.Error(err)
}

func (s *ClientSuite) TestListUsers() {
	s.fake.Seed(
		api.UserDTO{FirstName: "Ada", LastName: "Lovelace", PhoneNumber: "555 0100"},
		api.UserDTO{FirstName: "Alan", LastName: "Turing", PhoneNumber: "555 0199"},
	)

	users, err := s.client.ListUsers(context.Background())
	s.Require().NoError(err)
	s.Len(users, 2)
	s.Equal("Ada", users[0].FirstName)
	s.NotEmpty(users[0].ID)

	s.Equal(1.0, testutil.ToFloat64(s.metrics.RequestsTotal.WithLabelValues(api.EndpointList, "ok")))
}

func (s *ClientSuite) TestListEmptyIsNotAnError() {
	users, err := s.client.ListUsers(context.Background())
	s.Require().NoError(err)
	s.Empty(users)
}

func (s *ClientSuite) TestSendsHeaders() {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{"success":true,"messages":[],"data":{"users":[]},"status":200}`))
	}))
	defer srv.Close()

	client, err := api.NewClient(api.Config{BaseURL: srv.URL, APIKey: testAPIKey})
	s.Require().NoError(err)

	_, err = client.ListUsers(context.Background())
	s.Require().NoError(err)
	s.Equal(testAPIKey, got.Get("ApiKey"))
	s.Equal("text/plain", got.Get("accept"))
}

func (s *ClientSuite) TestRejectedEnvelopeUsesJoinedMessages() {
	s.fake.FailNext(api.EndpointList, "Service down", "Try later")

	_, err := s.client.ListUsers(context.Background())
	s.requireType(err, api.ErrRejected)
	s.Equal("Service down, Try later", err.Error())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.RequestsTotal.WithLabelValues(api.EndpointList, "error")))
}

func (s *ClientSuite) TestNilDataIsFailure() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"messages":["no data"],"data":null,"status":200}`))
	}))
	defer srv.Close()

	client, err := api.NewClient(api.Config{BaseURL: srv.URL, APIKey: testAPIKey})
	s.Require().NoError(err)

	_, err = client.ListUsers(context.Background())
	s.requireType(err, api.ErrRejected)
	s.Equal("no data", err.Error())
}

func (s *ClientSuite) TestNonEnvelopeErrorStatus() {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	client, err := api.NewClient(api.Config{BaseURL: srv.URL, APIKey: testAPIKey})
	s.Require().NoError(err)

	err = client.DeleteUser(context.Background(), "x")
	s.requireType(err, api.ErrServer)
}

func (s *ClientSuite) TestWrongAPIKey() {
	client, err := api.NewClient(api.Config{BaseURL: s.server.URL, APIKey: "wrong"})
	s.Require().NoError(err)

	_, err = client.ListUsers(context.Background())
	s.requireType(err, api.ErrUnauthorized)
}

func (s *ClientSuite) TestTimeout() {
	s.fake.SetLatency(300 * time.Millisecond)

	client, err := api.NewClient(api.Config{BaseURL: s.server.URL, APIKey: testAPIKey, Timeout: 50 * time.Millisecond})
	s.Require().NoError(err)

	_, err = client.ListUsers(context.Background())
	s.requireType(err, api.ErrTimeout)
}

func (s *ClientSuite) TestUploadRejectsUnsupportedExtensionWithoutRequest() {
	_, err := s.client.UploadImage(context.Background(), "/does/not/matter/avatar.gif")

	s.requireType(err, api.ErrUnsupportedFile)
	s.Equal(0, s.fake.Calls(api.EndpointUpload))
}

func (s *ClientSuite) TestUploadImage() {
	path := s.writeImage("avatar.JPEG")

	imageURL, err := s.client.UploadImage(context.Background(), path)
	s.Require().NoError(err)
	s.Contains(imageURL, "/images/")

	resp, err := http.Get(imageURL)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("image/jpeg", resp.Header.Get("Content-Type"))
}

func (s *ClientSuite) TestImageMIMEType() {
	for path, expected := range map[string]string{
		"a.jpg":  "image/jpeg",
		"a.JPG":  "image/jpeg",
		"a.jpeg": "image/jpeg",
		"a.png":  "image/png",
	} {
		got, err := api.ImageMIMEType(path)
		s.NoError(err)
		s.Equal(expected, got, path)
	}

	_, err := api.ImageMIMEType("a.webp")
	s.requireType(err, api.ErrUnsupportedFile)
}

func (s *ClientSuite) TestRepositoryCreateWithPhotoUsesUploadedURL() {
	path := s.writeImage("avatar.jpg")

	created, err := s.repo.Create(context.Background(),
		models.Contact{FirstName: "Grace", LastName: "Hopper", Phone: "555 0142", PhotoURL: "http://old/photo.jpg"},
		path)
	s.Require().NoError(err)

	s.NotEmpty(created.ID)
	s.Equal("Grace", created.FirstName)
	s.Contains(created.PhotoURL, "/images/")
	s.False(created.IsInDevice)
	s.Equal(1, s.fake.Calls(api.EndpointUpload))
}

func (s *ClientSuite) TestRepositoryCreateWithoutPhotoKeepsExistingURL() {
	created, err := s.repo.Create(context.Background(),
		models.Contact{FirstName: "Grace", PhotoURL: "http://cdn/grace.png"}, "")
	s.Require().NoError(err)

	s.Equal("http://cdn/grace.png", created.PhotoURL)
	s.Equal(0, s.fake.Calls(api.EndpointUpload))
}

func (s *ClientSuite) TestRepositoryFailedUploadSkipsCreate() {
	s.fake.FailNext(api.EndpointUpload, "Image too large")

	_, err := s.repo.Create(context.Background(), models.Contact{FirstName: "Grace"}, s.writeImage("a.png"))
	s.requireType(err, api.ErrRejected)
	s.Equal(0, s.fake.Calls(api.EndpointCreate))
	s.Empty(s.fake.Users())
}

func (s *ClientSuite) TestRepositoryUpdate() {
	seeded := s.fake.Seed(api.UserDTO{FirstName: "Ada", PhoneNumber: "555"})

	updated, err := s.repo.Update(context.Background(),
		models.Contact{ID: seeded[0].ID, FirstName: "Ada", LastName: "King", Phone: "555"}, "")
	s.Require().NoError(err)
	s.Equal("King", updated.LastName)

	fetched, err := s.repo.Get(context.Background(), seeded[0].ID)
	s.Require().NoError(err)
	s.Equal("King", fetched.LastName)
}

func (s *ClientSuite) TestUpdateUnknownID() {
	_, err := s.repo.Update(context.Background(), models.Contact{ID: "missing", FirstName: "Ada"}, "")
	s.requireType(err, api.ErrNotFound)
	s.Equal("User not found", err.Error())
}

func (s *ClientSuite) TestDeleteThenList() {
	seeded := s.fake.Seed(api.UserDTO{FirstName: "Ada"}, api.UserDTO{FirstName: "Alan"})

	s.Require().NoError(s.repo.Delete(context.Background(), seeded[0].ID))

	contacts, err := s.repo.GetAll(context.Background())
	s.Require().NoError(err)
	s.Require().Len(contacts, 1)
	s.Equal(seeded[1].ID, contacts[0].ID)
}
