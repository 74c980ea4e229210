package auth_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spec-kit/complaint-service/internal/auth"
)

var _ = Describe("TokenManager", func() {
	It("round-trips the subject and token id", func() {
		tm := auth.NewTokenManager("secret", time.Hour)

		signed, meta, err := tm.GenerateToken("user-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(meta.ID).NotTo(BeEmpty())
		Expect(meta.ExpiresAt.Sub(meta.IssuedAt)).To(Equal(time.Hour))

		parsed, err := tm.ParseToken(signed)
		Expect(err).NotTo(HaveOccurred())
		Expect(parsed.SubjectID).To(Equal("user-1"))
		Expect(parsed.ID).To(Equal(meta.ID))
	})

	It("defaults to a 24 hour lifetime", func() {
		tm := auth.NewTokenManager("secret", 0)

		_, meta, err := tm.GenerateToken("user-1")
		Expect(err).NotTo(HaveOccurred())
		Expect(meta.ExpiresAt.Sub(meta.IssuedAt)).To(Equal(24 * time.Hour))
	})

	It("rejects tokens signed with another secret", func() {
		signed, _, err := auth.NewTokenManager("one", time.Hour).GenerateToken("user-1")
		Expect(err).NotTo(HaveOccurred())

		_, err = auth.NewTokenManager("two", time.Hour).ParseToken(signed)
		Expect(err).To(HaveOccurred())
	})

	It("rejects expired tokens", func() {
		signed, _, err := auth.NewTokenManager("secret", time.Millisecond).GenerateToken("user-1")
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() error {
			_, err := auth.NewTokenManager("secret", time.Hour).ParseToken(signed)
			return err
		}, 3*time.Second, 100*time.Millisecond).Should(HaveOccurred())
	})

	It("rejects garbage", func() {
		_, err := auth.NewTokenManager("secret", time.Hour).ParseToken("not.a.jwt")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("PasswordHasher", func() {
	hasher := auth.NewPasswordHasher(4)

	It("verifies the original password only", func() {
		hashed, err := hasher.Hash("s3cret")
		Expect(err).NotTo(HaveOccurred())
		Expect(hashed).NotTo(Equal("s3cret"))

		ok, err := hasher.Verify(hashed, "s3cret")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())

		ok, err = hasher.Verify(hashed, "wrong")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("reports malformed hashes as errors", func() {
		_, err := hasher.Verify("plain-text", "s3cret")
		Expect(err).To(HaveOccurred())
	})
})
