package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/gomega"

	"todoapi/internal/core/domain"
)

var secret = []byte("super-secret")

func TestJWT_IssueAndVerify(t *testing.T) {
	RegisterTestingT(t)

	j := NewJWT(secret, time.Hour)

	token, err := j.Issue(42)
	Expect(err).To(BeNil())
	Expect(strings.Count(token, ".")).To(Equal(2))

	userId, err := j.Verify(token)
	Expect(err).To(BeNil())
	Expect(userId).To(Equal(42))
}

func TestJWT_ClaimsCarrySubjectAndExpiry(t *testing.T) {
	RegisterTestingT(t)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	j := NewJWT(secret, 15*time.Minute, WithClock(func() time.Time { return now }))

	token, _ := j.Issue(7)

	claims := &jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, claims)

	Expect(err).To(BeNil())
	Expect(claims.Subject).To(Equal("7"))
	Expect(claims.IssuedAt.Time).To(BeTemporally("==", now))
	Expect(claims.ExpiresAt.Time).To(BeTemporally("==", now.Add(15*time.Minute)))
	Expect(claims.ID).ToNot(BeEmpty())
}

func TestJWT_Expired(t *testing.T) {
	RegisterTestingT(t)

	now := time.Now()
	clock := func() time.Time { return now }

	j := NewJWT(secret, time.Minute, WithClock(clock))
	token, _ := j.Issue(1)

	_, err := j.Verify(token)
	Expect(err).To(BeNil())

	later := NewJWT(secret, time.Minute, WithClock(func() time.Time { return now.Add(2 * time.Minute) }))

	_, err = later.Verify(token)
	Expect(errors.Is(err, domain.ErrTokenExpired)).To(BeTrue())
}

func TestJWT_WrongSecret(t *testing.T) {
	RegisterTestingT(t)

	token, _ := NewJWT([]byte("right-secret"), time.Hour).Issue(1)

	_, err := NewJWT([]byte("wrong-secret"), time.Hour).Verify(token)
	Expect(errors.Is(err, domain.ErrInvalidToken)).To(BeTrue())
}

func TestJWT_TamperedPayload(t *testing.T) {
	RegisterTestingT(t)

	j := NewJWT(secret, time.Hour)
	token, _ := j.Issue(1)
	other, _ := j.Issue(2)

	parts := strings.Split(token, ".")
	otherParts := strings.Split(other, ".")
	forged := parts[0] + "." + otherParts[1] + "." + parts[2]

	_, err := j.Verify(forged)
	Expect(errors.Is(err, domain.ErrInvalidToken)).To(BeTrue())
}

func TestJWT_MalformedString(t *testing.T) {
	RegisterTestingT(t)

	_, err := NewJWT(secret, time.Hour).Verify("not.a.jwt")
	Expect(errors.Is(err, domain.ErrInvalidToken)).To(BeTrue())

	_, err = NewJWT(secret, time.Hour).Verify("")
	Expect(errors.Is(err, domain.ErrInvalidToken)).To(BeTrue())
}

func TestJWT_RejectsOtherSigningMethods(t *testing.T) {
	RegisterTestingT(t)

	claims := jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	Expect(err).To(BeNil())

	_, err = NewJWT(secret, time.Hour).Verify(token)
	Expect(errors.Is(err, domain.ErrInvalidToken)).To(BeTrue())

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	Expect(err).To(BeNil())

	_, err = NewJWT(secret, time.Hour).Verify(unsigned)
	Expect(errors.Is(err, domain.ErrInvalidToken)).To(BeTrue())
}

func TestJWT_RejectsMissingExpiryAndBadSubject(t *testing.T) {
	RegisterTestingT(t)

	noExpiry, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "1"}).SignedString(secret)

	_, err := NewJWT(secret, time.Hour).Verify(noExpiry)
	Expect(errors.Is(err, domain.ErrInvalidToken)).To(BeTrue())

	badSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(secret)

	_, err = NewJWT(secret, time.Hour).Verify(badSubject)
	Expect(errors.Is(err, domain.ErrInvalidToken)).To(BeTrue())
}
