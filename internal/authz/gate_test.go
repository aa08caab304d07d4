package authz_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/campushelp/helpdesk-service/internal/authz"
	"github.com/campushelp/helpdesk-service/internal/domain"
)

func TestAuthz(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Authz Gate Suite")
}

var _ = Describe("Authorization gate", func() {
	var (
		student = domain.Principal{UserID: "stu-1", Role: domain.RoleStudent}
		faculty = domain.Principal{UserID: "fac-1", Role: domain.RoleFaculty}
		admin   = domain.Principal{UserID: "adm-1", Role: domain.RoleAdmin}
		unknown = domain.Principal{UserID: "ghost-1", Role: domain.Role("superuser")}
	)

	Describe("CanReadTicket", func() {
		It("allows a submitter to read their own ticket", func() {
			Expect(authz.CanReadTicket(student, "stu-1")).To(BeTrue())
			Expect(authz.CanReadTicket(faculty, "fac-1")).To(BeTrue())
		})

		It("denies reading someone else's ticket", func() {
			Expect(authz.CanReadTicket(student, "stu-2")).To(BeFalse())
			Expect(authz.CanReadTicket(faculty, "stu-1")).To(BeFalse())
		})

		It("allows an admin to read any ticket", func() {
			Expect(authz.CanReadTicket(admin, "stu-1")).To(BeTrue())
			Expect(authz.CanReadTicket(admin, "adm-1")).To(BeTrue())
		})

		It("denies unknown roles even on their own ticket", func() {
			Expect(authz.CanReadTicket(unknown, "ghost-1")).To(BeFalse())
		})
	})

	Describe("CanWriteTicket", func() {
		It("allows only admins", func() {
			Expect(authz.CanWriteTicket(admin)).To(BeTrue())
			Expect(authz.CanWriteTicket(student)).To(BeFalse())
			Expect(authz.CanWriteTicket(faculty)).To(BeFalse())
			Expect(authz.CanWriteTicket(unknown)).To(BeFalse())
		})
	})

	Describe("CanComment", func() {
		It("allows a submitter to leave a public comment on their ticket", func() {
			Expect(authz.CanComment(student, "stu-1", false)).To(BeTrue())
		})

		It("denies commenting on a ticket the principal cannot read", func() {
			Expect(authz.CanComment(student, "stu-2", false)).To(BeFalse())
		})

		It("reserves internal comments to admins", func() {
			Expect(authz.CanComment(student, "stu-1", true)).To(BeFalse())
			Expect(authz.CanComment(faculty, "fac-1", true)).To(BeFalse())
			Expect(authz.CanComment(admin, "stu-1", true)).To(BeTrue())
		})

		It("denies unknown roles on every path", func() {
			Expect(authz.CanComment(unknown, "ghost-1", false)).To(BeFalse())
			Expect(authz.CanComment(unknown, "ghost-1", true)).To(BeFalse())
		})
	})

	Describe("VisibleComments", func() {
		comments := []domain.Comment{
			{ID: 1, Body: "public one", IsInternal: false},
			{ID: 2, Body: "staff only", IsInternal: true},
			{ID: 3, Body: "public two", IsInternal: false},
		}

		It("returns every comment to an admin", func() {
			visible := authz.VisibleComments(admin, comments)
			Expect(visible).To(HaveLen(3))
		})

		It("strips internal comments for students and faculty", func() {
			for _, p := range []domain.Principal{student, faculty} {
				visible := authz.VisibleComments(p, comments)
				Expect(visible).To(HaveLen(2))
				for _, c := range visible {
					Expect(c.IsInternal).To(BeFalse())
				}
			}
		})

		It("returns an empty slice when only internal comments exist", func() {
			onlyInternal := []domain.Comment{{ID: 9, IsInternal: true}}
			Expect(authz.VisibleComments(student, onlyInternal)).To(BeEmpty())
		})
	})
})
