package service

import (
	"errors"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
)

var _ = Describe("ComplaintService", func() {
	var (
		f     *fixture
		alice domain.Identity
		bob   domain.Identity
		staff domain.Identity
		admin domain.Identity
	)

	BeforeEach(func() {
		f = newFixture(config.AuthConfig{RegisterAllowRole: true})
		alice = f.register("Alice", "alice@example.com", domain.RoleUser)
		bob = f.register("Bob", "bob@example.com", domain.RoleUser)
		staff = f.register("Sam", "sam@example.com", domain.RoleStaff)
		admin = f.register("Root", "root@example.com", domain.RoleAdmin)
	})

	Describe("Create", func() {
		It("always starts open, unassigned and at zero progress", func() {
			c, err := f.complaints.Create(f.ctx, alice, ComplaintCreateInput{
				Title: "T", Description: "D", Category: "billing", Priority: domain.ComplaintPriorityHigh, Anonymous: true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(c.ID).NotTo(BeEmpty())
			Expect(c.Status).To(Equal(domain.ComplaintStatusOpen))
			Expect(c.Progress).To(Equal(0))
			Expect(c.AssignedTo).To(BeNil())
			Expect(c.Department).To(BeNil())
			Expect(c.UserID).To(Equal(alice.UserID))
			Expect(c.Priority).To(Equal(domain.ComplaintPriorityHigh))
			Expect(c.Anonymous).To(BeTrue())
			Expect(c.CreatedAt).To(Equal(c.UpdatedAt))
		})

		It("defaults priority to medium and rejects unknown priorities", func() {
			c := f.fileComplaint(alice, "T", "billing")
			Expect(c.Priority).To(Equal(domain.ComplaintPriorityMedium))

			_, err := f.complaints.Create(f.ctx, alice, ComplaintCreateInput{Title: "T", Priority: "urgent"})
			Expect(statusOf(err)).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("List", func() {
		BeforeEach(func() {
			f.fileComplaint(alice, "a1", "billing")
			f.fileComplaint(bob, "b1", "service")
			f.fileComplaint(alice, "a2", "billing")
			f.fileComplaint(staff, "s1", "other")
		})

		It("scopes non-admins to their own complaints, newest first", func() {
			for _, who := range []domain.Identity{alice, bob, staff} {
				list, err := f.complaints.List(f.ctx, who)
				Expect(err).NotTo(HaveOccurred())
				for _, c := range list {
					Expect(c.UserID).To(Equal(who.UserID))
				}
			}
			list, err := f.complaints.List(f.ctx, alice)
			Expect(err).NotTo(HaveOccurred())
			Expect(titles(list)).To(Equal([]string{"a2", "a1"}))
		})

		It("returns everything to admins", func() {
			list, err := f.complaints.List(f.ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(titles(list)).To(Equal([]string{"s1", "a2", "b1", "a1"}))
		})
	})

	Describe("Get", func() {
		It("lets the owner and admins read, forbids others", func() {
			c := f.fileComplaint(alice, "T", "billing")

			_, err := f.complaints.Get(f.ctx, alice, c.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = f.complaints.Get(f.ctx, admin, c.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = f.complaints.Get(f.ctx, bob, c.ID)
			Expect(err).To(MatchError("Unauthorized"))
			Expect(statusOf(err)).To(Equal(http.StatusForbidden))
		})

		It("reports missing complaints before checking ownership", func() {
			_, err := f.complaints.Get(f.ctx, bob, "65f000000000000000000000")
			Expect(err).To(MatchError("Complaint not found"))
			Expect(statusOf(err)).To(Equal(http.StatusNotFound))
		})
	})

	Describe("Update", func() {
		var complaint *domain.Complaint

		BeforeEach(func() {
			complaint = f.fileComplaint(alice, "T", "billing")
		})

		It("forbids non-admins, owners included", func() {
			for _, who := range []domain.Identity{alice, bob, staff} {
				_, err := f.complaints.Update(f.ctx, who, complaint.ID, domain.ComplaintPatch{Status: domain.Some(domain.ComplaintStatusResolved)})
				Expect(err).To(MatchError("Admin access required"))
				Expect(statusOf(err)).To(Equal(http.StatusForbidden))
			}
			stored, _ := f.complaints.Get(f.ctx, admin, complaint.ID)
			Expect(stored.Status).To(Equal(domain.ComplaintStatusOpen))
		})

		It("changes only the fields present and refreshes updated_at", func() {
			updated, err := f.complaints.Update(f.ctx, admin, complaint.ID, domain.ComplaintPatch{
				Priority: domain.Some(domain.ComplaintPriorityHigh),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Priority).To(Equal(domain.ComplaintPriorityHigh))
			Expect(updated.Status).To(Equal(complaint.Status))
			Expect(updated.AssignedTo).To(BeNil())
			Expect(updated.Progress).To(Equal(complaint.Progress))
			Expect(updated.UpdatedAt).To(BeTemporally(">", complaint.UpdatedAt))
		})

		It("resolves a complaint and keeps the rest intact", func() {
			_, err := f.complaints.Update(f.ctx, admin, complaint.ID, domain.ComplaintPatch{
				Status:   domain.Some(domain.ComplaintStatusResolved),
				Progress: domain.Some(100),
			})
			Expect(err).NotTo(HaveOccurred())

			stored, err := f.complaints.Get(f.ctx, alice, complaint.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(domain.ComplaintStatusResolved))
			Expect(stored.Progress).To(Equal(100))
			Expect(stored.Title).To(Equal("T"))
			Expect(stored.ResolvedAt).NotTo(BeNil())
		})

		It("clears resolved_at when a complaint is reopened", func() {
			_, err := f.complaints.Update(f.ctx, admin, complaint.ID, domain.ComplaintPatch{Status: domain.Some(domain.ComplaintStatusResolved)})
			Expect(err).NotTo(HaveOccurred())
			reopened, err := f.complaints.Update(f.ctx, admin, complaint.ID, domain.ComplaintPatch{Status: domain.Some(domain.ComplaintStatusInProgress)})
			Expect(err).NotTo(HaveOccurred())
			Expect(reopened.ResolvedAt).To(BeNil())
		})

		It("accepts the hyphenated in-progress spelling", func() {
			updated, err := f.complaints.Update(f.ctx, admin, complaint.ID, domain.ComplaintPatch{
				Status: domain.Some(domain.ComplaintStatus("in-progress")),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(domain.ComplaintStatusInProgress))
		})

		It("can assign and later unassign", func() {
			assigned, err := f.complaints.Update(f.ctx, admin, complaint.ID, domain.ComplaintPatch{
				AssignedTo: domain.Some(ptr("Sam")),
				Department: domain.Some(ptr("Billing")),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(*assigned.AssignedTo).To(Equal("Sam"))
			Expect(*assigned.Department).To(Equal("Billing"))

			cleared, err := f.complaints.Update(f.ctx, admin, complaint.ID, domain.ComplaintPatch{
				AssignedTo: domain.Optional[*string]{Set: true, Null: true},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(cleared.AssignedTo).To(BeNil())
			Expect(*cleared.Department).To(Equal("Billing"))
		})

		DescribeTable("rejects invalid values",
			func(patch domain.ComplaintPatch) {
				_, err := f.complaints.Update(f.ctx, admin, complaint.ID, patch)
				Expect(statusOf(err)).To(Equal(http.StatusBadRequest))
			},
			Entry("unknown status", domain.ComplaintPatch{Status: domain.Some(domain.ComplaintStatus("closed"))}),
			Entry("unknown priority", domain.ComplaintPatch{Priority: domain.Some(domain.ComplaintPriority("urgent"))}),
			Entry("progress above 100", domain.ComplaintPatch{Progress: domain.Some(150)}),
			Entry("negative progress", domain.ComplaintPatch{Progress: domain.Some(-1)}),
			Entry("null status", domain.ComplaintPatch{Status: domain.Optional[domain.ComplaintStatus]{Set: true, Null: true}}),
		)

		It("reports missing complaints", func() {
			_, err := f.complaints.Update(f.ctx, admin, "not-an-object-id", domain.ComplaintPatch{})
			Expect(statusOf(err)).To(Equal(http.StatusNotFound))
		})

		It("records each changed field in the history", func() {
			_, err := f.complaints.Update(f.ctx, admin, complaint.ID, domain.ComplaintPatch{
				Status:   domain.Some(domain.ComplaintStatusInProgress),
				Priority: domain.Some(domain.ComplaintPriorityMedium),
				Progress: domain.Some(40),
			})
			Expect(err).NotTo(HaveOccurred())

			history, err := f.complaints.History(f.ctx, admin, complaint.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(2))
			Expect(history[0].ChangeType).To(Equal(domain.ChangeTypeStatus))
			Expect(history[0].OldValue).To(HaveKeyWithValue("status", "open"))
			Expect(history[0].NewValue).To(HaveKeyWithValue("status", "in_progress"))
			Expect(history[0].ChangedByID).To(Equal(admin.UserID))
			Expect(history[1].ChangeType).To(Equal(domain.ChangeTypeProgress))
		})
	})

	Describe("Delete", func() {
		It("is admin only", func() {
			c := f.fileComplaint(alice, "T", "billing")
			err := f.complaints.Delete(f.ctx, alice, c.ID)
			Expect(statusOf(err)).To(Equal(http.StatusForbidden))
		})

		It("removes the complaint and records the deletion", func() {
			c := f.fileComplaint(alice, "T", "billing")
			Expect(f.complaints.Delete(f.ctx, admin, c.ID)).To(Succeed())

			_, err := f.complaints.Get(f.ctx, admin, c.ID)
			Expect(statusOf(err)).To(Equal(http.StatusNotFound))

			history, err := f.complaints.History(f.ctx, admin, c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(HaveLen(1))
			Expect(history[0].ChangeType).To(Equal(domain.ChangeTypeDeleted))
		})

		It("reports a missing complaint", func() {
			err := f.complaints.Delete(f.ctx, admin, "65f000000000000000000000")
			Expect(err).To(MatchError("Complaint not found"))
		})
	})

	Describe("History", func() {
		It("is admin only and empty for untouched complaints", func() {
			c := f.fileComplaint(alice, "T", "billing")
			_, err := f.complaints.History(f.ctx, alice, c.ID)
			Expect(statusOf(err)).To(Equal(http.StatusForbidden))

			history, err := f.complaints.History(f.ctx, admin, c.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(history).To(BeEmpty())
			Expect(history).NotTo(BeNil())
		})
	})

	It("propagates store failures as internal errors", func() {
		f.store.Err = errors.New("socket closed")
		_, err := f.complaints.List(f.ctx, admin)
		Expect(err).To(MatchError("socket closed"))
		Expect(statusOf(err)).To(Equal(http.StatusInternalServerError))
	})
})

func titles(list []domain.Complaint) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.Title)
	}
	return out
}
