package service

import (
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/spec-kit/complaint-service/internal/config"
	"github.com/spec-kit/complaint-service/internal/domain"
)

var _ = Describe("AnalyticsService", func() {
	var (
		f     *fixture
		alice domain.Identity
		bob   domain.Identity
		admin domain.Identity
	)

	BeforeEach(func() {
		f = newFixture(config.AuthConfig{RegisterAllowRole: true})
		alice = f.register("Alice", "alice@example.com", "")
		bob = f.register("Bob", "bob@example.com", "")
		admin = f.register("Root", "root@example.com", domain.RoleAdmin)
	})

	It("is admin only", func() {
		_, err := f.analytics.Stats(f.ctx, alice)
		Expect(statusOf(err)).To(Equal(http.StatusForbidden))
		_, err = f.analytics.Insights(f.ctx, alice)
		Expect(statusOf(err)).To(Equal(http.StatusForbidden))
	})

	It("reports zeros on empty collections", func() {
		stats, err := f.analytics.Stats(f.ctx, admin)
		Expect(err).NotTo(HaveOccurred())
		Expect(*stats).To(Equal(domain.Stats{}))

		insights, err := f.analytics.Insights(f.ctx, admin)
		Expect(err).NotTo(HaveOccurred())
		Expect(insights.ComplaintsByCategory).To(BeEmpty())
		Expect(insights.FeedbackByCategory).NotTo(BeNil())
		Expect(insights.CustomerSatisfaction).To(BeZero())
	})

	Context("with data", func() {
		BeforeEach(func() {
			urgent, err := f.complaints.Create(f.ctx, alice, ComplaintCreateInput{Title: "a", Category: "billing", Priority: domain.ComplaintPriorityHigh})
			Expect(err).NotTo(HaveOccurred())
			_, err = f.complaints.Create(f.ctx, bob, ComplaintCreateInput{Title: "b", Category: "service", Priority: domain.ComplaintPriorityLow})
			Expect(err).NotTo(HaveOccurred())
			fixed := f.fileComplaint(alice, "c", "billing")

			f.clock = f.clock.Add(3 * time.Hour)
			_, err = f.complaints.Update(f.ctx, admin, fixed.ID, domain.ComplaintPatch{Status: domain.Some(domain.ComplaintStatusResolved)})
			Expect(err).NotTo(HaveOccurred())
			Expect(urgent.Status).To(Equal(domain.ComplaintStatusOpen))

			for _, r := range []struct {
				rating   int
				category string
			}{{5, "service"}, {4, "service"}, {3, "app"}, {2, "service"}} {
				_, err := f.feedback.Create(f.ctx, alice, FeedbackCreateInput{Rating: r.rating, Category: r.category})
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("computes headline counters", func() {
			stats, err := f.analytics.Stats(f.ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalComplaints).To(BeEquivalentTo(3))
			Expect(stats.TotalFeedback).To(BeEquivalentTo(4))
			Expect(stats.OpenComplaints).To(BeEquivalentTo(2))
			Expect(stats.ResolvedComplaints).To(BeEquivalentTo(1))
			Expect(stats.HighPriorityAlerts).To(BeEquivalentTo(1))
			Expect(stats.CustomerSatisfaction).To(Equal(3.5))
			Expect(stats.AvgResolutionHours).To(Equal(3.0))
		})

		It("groups categories by count and splits sentiment", func() {
			insights, err := f.analytics.Insights(f.ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(insights.ComplaintsByCategory).To(Equal([]domain.CategoryCount{
				{Category: "billing", Count: 2},
				{Category: "service", Count: 1},
			}))
			Expect(insights.FeedbackByCategory[0]).To(Equal(domain.CategoryCount{Category: "service", Count: 3}))
			Expect(insights.Sentiment).To(Equal(domain.Sentiment{Positive: 2, Neutral: 1, Negative: 1}))
			Expect(insights.TotalFeedback).To(BeEquivalentTo(4))
			Expect(insights.CustomerSatisfaction).To(Equal(3.5))
		})
	})
})

var _ = Describe("sentimentOf", func() {
	It("sums every document in each band", func() {
		s := sentimentOf([]domain.RatingCount{{Rating: 5, Count: 3}, {Rating: 4, Count: 2}, {Rating: 3, Count: 1}, {Rating: 1, Count: 4}})
		Expect(s).To(Equal(domain.Sentiment{Positive: 5, Neutral: 1, Negative: 4}))
	})
})

var _ = Describe("round1", func() {
	It("rounds to one decimal", func() {
		Expect(round1(3.666)).To(Equal(3.7))
		Expect(round1(4.25)).To(Equal(4.3))
		Expect(round1(0)).To(BeZero())
	})
})
