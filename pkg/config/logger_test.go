package config

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

func TestLokiLogger_PushesToLoki(t *testing.T) {
	RegisterTestingT(t)

	bodies := make(chan string, 1)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies <- r.URL.Path + " " + string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	logger := newLokiLogger(zap.NewNop(), "todoapi-test", server.URL+"/")
	logger.InfoWithTrace(context.Background(), "user signed up", zap.Int("user_id", 7))

	var body string
	Eventually(bodies, time.Second).Should(Receive(&body))

	path, payload, _ := strings.Cut(body, " ")
	Expect(path).To(Equal("/loki/api/v1/push"))

	var push lokiPush
	Expect(json.Unmarshal([]byte(payload), &push)).To(Succeed())
	Expect(push.Streams).To(HaveLen(1))
	Expect(push.Streams[0].Stream).To(HaveKeyWithValue("service", "todoapi-test"))

	line := push.Streams[0].Values[0][1]
	Expect(line).To(ContainSubstring(`"message":"user signed up"`))
	Expect(line).To(ContainSubstring(`"user_id":7`))
}

func TestLokiLogger_NoPushWithoutURL(t *testing.T) {
	RegisterTestingT(t)

	logger := NewNopLogger()

	Expect(logger.lokiURL).To(BeEmpty())
	Expect(func() {
		logger.ErrorWithTrace(context.Background(), "boom", zap.String("reason", strings.Repeat("x", 3)))
	}).ToNot(Panic())
	Expect(logger.Zap()).ToNot(BeNil())
}
