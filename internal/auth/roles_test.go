package auth_test

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spec-kit/complaint-service/internal/auth"
	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/errorutil"
)

var _ = Describe("Authorization policy", func() {
	admin := domain.Identity{UserID: "a", Role: domain.RoleAdmin}
	staff := domain.Identity{UserID: "s", Role: domain.RoleStaff}
	user := domain.Identity{UserID: "u", Role: domain.RoleUser}

	It("lets only admins perform admin actions", func() {
		Expect(auth.RequireAdmin(admin)).To(Succeed())
		Expect(apperrors.StatusOf(auth.RequireAdmin(staff))).To(Equal(http.StatusForbidden))
		Expect(apperrors.StatusOf(auth.RequireAdmin(user))).To(Equal(http.StatusForbidden))
	})

	It("lets owners and admins view owned resources", func() {
		Expect(auth.RequireOwnerOrAdmin(user, "u")).To(Succeed())
		Expect(auth.RequireOwnerOrAdmin(admin, "u")).To(Succeed())
		Expect(apperrors.StatusOf(auth.RequireOwnerOrAdmin(staff, "u"))).To(Equal(http.StatusForbidden))
	})

	It("never matches an empty owner", func() {
		Expect(auth.RequireOwnerOrAdmin(domain.Identity{Role: domain.RoleUser}, "")).NotTo(Succeed())
	})

	It("scopes listings to the owner unless admin", func() {
		Expect(auth.OwnerScope(admin)).To(BeEmpty())
		Expect(auth.OwnerScope(staff)).To(Equal("s"))
		Expect(auth.OwnerScope(user)).To(Equal("u"))
	})
})
