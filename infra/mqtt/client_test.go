package mqtt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/prodplan/auth"
	"github.com/kilianp07/prodplan/core/model"
	coremqtt "github.com/kilianp07/prodplan/core/mqtt"
)

// helper to generate self-signed cert
func generateCert(t *testing.T) (certFile, keyFile, caFile string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("gen key: %v", err)
	}
	tmpl := x509.Certificate{SerialNumber: big.NewInt(1), Subject: pkix.Name{CommonName: "test"}, NotBefore: time.Now(), NotAfter: time.Now().Add(time.Hour)}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create cert: %v", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	dir := t.TempDir()
	certFile = dir + "/cert.pem"
	keyFile = dir + "/key.pem"
	caFile = dir + "/ca.pem"
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("write cert: %v", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0644); err != nil {
		t.Fatalf("write key: %v", err)
	}
	if err := os.WriteFile(caFile, certPEM, 0644); err != nil {
		t.Fatalf("write ca: %v", err)
	}
	return
}

func TestLoadTLSConfig(t *testing.T) {
	cert, key, ca := generateCert(t)
	cfg := Config{UseTLS: true, ClientCert: cert, ClientKey: key, CABundle: ca}
	tlsCfg, err := cfg.LoadTLSConfig()
	if err != nil {
		t.Fatalf("load tls: %v", err)
	}
	if len(tlsCfg.Certificates) == 0 {
		t.Fatalf("no certs loaded")
	}
	if tlsCfg.RootCAs == nil {
		t.Fatalf("no root CAs")
	}
}

func TestNewClientOptionsAuth(t *testing.T) {
	opts, err := NewClientOptions(Config{Broker: "tcp://localhost:1883", ClientID: "id", Username: "u", Password: "p"})
	if err != nil {
		t.Fatalf("opts: %v", err)
	}
	if opts.Username != "u" || opts.Password != "p" {
		t.Fatalf("auth not set")
	}
}

func TestNewClientOptionsOAuth2(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", AuthMethod: "oauth2",
		OAuth2: auth.Conf{ClientID: "svc", ClientSecret: "s", TokenURL: srv.URL}}
	opts, err := NewClientOptions(cfg)
	require.NoError(t, err)
	require.NotNil(t, opts.CredentialsProvider)
	user, pass := opts.CredentialsProvider()
	assert.Equal(t, "svc", user)
	assert.Equal(t, "tok", pass)
}

func withMockClient(t *testing.T, mc *mockClient) {
	t.Helper()
	newMQTTClient = func(o *paho.ClientOptions) pahoClient { mc.opts = o; return mc }
	t.Cleanup(func() { newMQTTClient = func(opts *paho.ClientOptions) pahoClient { return paho.NewClient(opts) } })
}

func samplePlan() coremqtt.PlanMessage {
	return coremqtt.PlanMessage{
		PlanID:   "plan-1",
		Load:     20,
		Feasible: true,
		Plan:     model.ProductionPlan{{Name: "gas1", P: 12.5}, {Name: "wind1", P: 7.5}},
	}
}

func TestPublishPlan(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", TopicPrefix: "site/a", QoS: map[string]byte{"plan": 1}}
	cli, err := NewPahoClient(cfg)
	require.NoError(t, err)

	id, err := cli.PublishPlan(context.Background(), samplePlan())
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err, "message id should be a uuid")

	require.Len(t, mc.published, 1)
	assert.Equal(t, "site/a/plan", mc.published[0].topic)
	assert.Equal(t, byte(1), mc.published[0].qos)
	var got coremqtt.PlanMessage
	require.NoError(t, json.Unmarshal(mc.published[0].payload, &got))
	assert.Equal(t, id, got.MessageID)
	assert.Equal(t, "plan-1", got.PlanID)
	assert.NotZero(t, got.Timestamp)
	assert.Equal(t, samplePlan().Plan, got.Plan)
}

func TestPublishPlanSetpoints(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", TopicPrefix: "prodplan/", Setpoints: true, QoS: map[string]byte{"setpoint": 2}}
	cli, err := NewPahoClient(cfg)
	require.NoError(t, err)

	_, err = cli.PublishPlan(context.Background(), samplePlan())
	require.NoError(t, err)
	require.Len(t, mc.published, 3)
	assert.Equal(t, "prodplan/plan", mc.published[0].topic)
	assert.Equal(t, "prodplan/unit/gas1/setpoint", mc.published[1].topic)
	assert.Equal(t, "prodplan/unit/wind1/setpoint", mc.published[2].topic)
	assert.Equal(t, byte(2), mc.published[2].qos)

	var sp coremqtt.SetpointMessage
	require.NoError(t, json.Unmarshal(mc.published[2].payload, &sp))
	assert.Equal(t, "wind1", sp.Unit)
	assert.Equal(t, 7.5, sp.P)
	assert.Equal(t, "plan-1", sp.PlanID)
}

func TestLWTConfigured(t *testing.T) {
	mc := &mockClient{}
	withMockClient(t, mc)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", LWTTopic: "lwt", LWTPayload: "bye", LWTQoS: 1}
	cli, err := NewPahoClient(cfg)
	require.NoError(t, err)
	assert.True(t, mc.opts.WillEnabled)
	assert.Equal(t, "lwt", mc.opts.WillTopic)
	assert.Equal(t, "bye", string(mc.opts.WillPayload))
	cli.Close()
	assert.Empty(t, mc.published, "unexpected publish on close")
}

func TestRetryLogic(t *testing.T) {
	mc := &mockClient{publishErrs: []error{fmt.Errorf("net fail"), nil}}
	withMockClient(t, mc)
	cfg := Config{Broker: "tcp://localhost:1883", ClientID: "id", MaxRetries: 1, BackoffMS: 1}
	cli, err := NewPahoClient(cfg)
	require.NoError(t, err)
	_, err = cli.PublishPlan(context.Background(), samplePlan())
	require.NoError(t, err)
	assert.Len(t, mc.published, 2, "expected one retry")
}

func TestPublishPlanNotConnected(t *testing.T) {
	mc := &mockClient{disconnected: true}
	withMockClient(t, mc)
	cli, err := NewPahoClient(Config{Broker: "tcp://localhost:1883", ClientID: "id"})
	require.NoError(t, err)
	_, err = cli.PublishPlan(context.Background(), samplePlan())
	assert.ErrorIs(t, err, coremqtt.ErrNotConnected)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{}.Validate(), "disabled config is always valid")
	assert.Error(t, Config{Enabled: true}.Validate())
	assert.Error(t, Config{Enabled: true, Broker: "tcp://b:1883", QoS: map[string]byte{"plan": 3}}.Validate())
	assert.Error(t, Config{Enabled: true, Broker: "tcp://b:1883", UseTLS: true}.Validate())
	assert.Error(t, Config{Enabled: true, Broker: "tcp://b:1883", AuthMethod: "oauth2"}.Validate())

	cfg := Config{Enabled: true, Broker: "tcp://b:1883"}
	cfg.SetDefaults()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "prodplan/plan", cfg.PlanTopic())
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.NotEmpty(t, cfg.ClientID)
}

func TestNewDisabledIsNop(t *testing.T) {
	p, err := New(Config{})
	require.NoError(t, err)
	assert.IsType(t, coremqtt.NopPublisher{}, p)
}

func TestMockPublisher(t *testing.T) {
	m := NewMockPublisher()
	id, err := m.PublishPlan(context.Background(), samplePlan())
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	assert.Len(t, m.Published(), 1)
	m.Fail = true
	_, err = m.PublishPlan(context.Background(), samplePlan())
	assert.Error(t, err)
}

// mockClient implements pahoClient for tests
type mockClient struct {
	opts *paho.ClientOptions
	published    []publishedMsg
	publishErrs  []error
	disconnected bool
}

type publishedMsg struct {
	topic   string
	qos     byte
	payload []byte
}

func (m *mockClient) IsConnected() bool { return !m.disconnected }
func (m *mockClient) Connect() paho.Token {
	if m.opts != nil && m.opts.OnConnect != nil {
		m.opts.OnConnect(m)
	}
	return &dummyToken{}
}
func (m *mockClient) Disconnect(uint) {}
func (m *mockClient) Publish(topic string, qos byte, _ bool, payload interface{}) paho.Token {
	b, _ := payload.([]byte)
	m.published = append(m.published, publishedMsg{topic, qos, b})
	if len(m.publishErrs) > 0 {
		err := m.publishErrs[0]
		m.publishErrs = m.publishErrs[1:]
		return &dummyToken{err: err}
	}
	return &dummyToken{}
}
func (m *mockClient) Subscribe(string, byte, paho.MessageHandler) paho.Token {
	return &dummyToken{}
}
func (m *mockClient) SubscribeMultiple(map[string]byte, paho.MessageHandler) paho.Token {
	return &dummyToken{}
}
func (m *mockClient) Unsubscribe(...string) paho.Token        { return &dummyToken{} }
func (m *mockClient) AddRoute(string, paho.MessageHandler)    {}
func (m *mockClient) OptionsReader() paho.ClientOptionsReader { return paho.ClientOptionsReader{} }
func (m *mockClient) IsConnectionOpen() bool                  { return true }

type dummyToken struct{ err error }

func (d dummyToken) Wait() bool                     { return true }
func (d dummyToken) WaitTimeout(time.Duration) bool { return true }
func (d dummyToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (d dummyToken) Error() error                   { return d.err }
