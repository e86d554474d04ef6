package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"habitat-pro/internal/domain"
)

func TestDuePhase(t *testing.T) {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name      string
		today     time.Time
		charge    domain.Charge
		wantPhase domain.NotificationPhase
		wantOK    bool
	}{
		{"FarFromDue", due.AddDate(0, 0, -10), domain.Charge{}, "", false},
		{"SevenDaysOut", due.AddDate(0, 0, -7), domain.Charge{}, domain.NotificationPhase7D, true},
		{"TwoDaysOutStillSevenWindow", due.AddDate(0, 0, -2), domain.Charge{}, domain.NotificationPhase7D, true},
		{"SevenAlreadySent", due.AddDate(0, 0, -5), domain.Charge{Sent7D: true}, "", false},
		{"OneDayOut", due.AddDate(0, 0, -1), domain.Charge{Sent7D: true}, domain.NotificationPhase1D, true},
		{"DueToday", due, domain.Charge{Sent7D: true, Sent1D: true}, domain.NotificationPhaseDue, true},
		{"DueAlreadySent", due, domain.Charge{SentDue: true}, "", false},
		{"OneDayLate", due.AddDate(0, 0, 1), domain.Charge{}, domain.OverduePhase(1), true},
		{"EightDaysLateHighestBucket", due.AddDate(0, 0, 8), domain.Charge{}, domain.OverduePhase(7), true},
		{"EightDaysLateAlreadyNoticed", due.AddDate(0, 0, 8), domain.Charge{OverdueNoticeDays: 7}, "", false},
		{"ThirtyFiveDaysLateSkipsToTop", due.AddDate(0, 0, 35), domain.Charge{OverdueNoticeDays: 14}, domain.OverduePhase(30), true},
		{"ThreeDaysLateBucketOneDone", due.AddDate(0, 0, 3), domain.Charge{OverdueNoticeDays: 1}, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := tc.charge
			c.DueDate = due
			c.Status = domain.ChargeStatusPending
			phase, ok := duePhase(&c, tc.today)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.wantPhase, phase)
		})
	}
}

func noticeForTest(email, phone string) domain.ChargeNotice {
	return domain.ChargeNotice{
		Charge: domain.Charge{
			ID:             55,
			Number:         "202603-0012",
			DueDate:        time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			HistoricalRent: decimal.NewFromInt(1000),
			Status:         domain.ChargeStatusPending,
			Token:          "0123456789abcdef0123456789abcdef",
		},
		ContractNumber:  "CTR-2025-0001",
		TenantName:      "Maria Silva",
		TenantEmail:     email,
		TenantPhone:     phone,
		PropertyCode:    "AP-101",
		PropertyAddress: "Rua das Flores, 100 - São Paulo/SP",
	}
}

func TestNotificationService_DispatchDue(t *testing.T) {
	ctx := context.Background()
	// The notice charge is due 2026-03-10; today is seven days earlier.
	now := time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC)

	t.Run("EmailSentAndMarked", func(t *testing.T) {
		chargeRepo := new(MockChargeRepo)
		logRepo := new(MockNotificationLogRepo)
		email := new(MockEmailTransport)
		messaging := new(MockMessageTransport)
		svc := NewNotificationService(chargeRepo, logRepo, email, messaging, "https://cobranca.example.com.br", true)

		chargeRepo.On("ListOpen", ctx).Return([]domain.ChargeNotice{noticeForTest("maria@example.com.br", "")}, nil)
		email.On("Send", ctx, "maria@example.com.br", "Maria Silva",
			mock.AnythingOfType("string"), mock.AnythingOfType("string"), "").Return(nil)
		chargeRepo.On("MarkNotified", ctx, int32(55), domain.NotificationPhase7D,
			mock.MatchedBy(func(logs []*domain.NotificationLog) bool {
				return len(logs) == 1 &&
					logs[0].Channel == domain.NotificationChannelEmail &&
					logs[0].Outcome == domain.NotificationOutcomeSent &&
					logs[0].Recipient == "maria@example.com.br"
			})).Return(nil)

		result, err := svc.DispatchDue(ctx, now)
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Considered)
		assert.Equal(t, 1, result.Sent)
		assert.Equal(t, 0, result.Failed)

		chargeRepo.AssertExpectations(t)
		email.AssertExpectations(t)
	})

	t.Run("BothChannelsWhenBothContacts", func(t *testing.T) {
		chargeRepo := new(MockChargeRepo)
		logRepo := new(MockNotificationLogRepo)
		email := new(MockEmailTransport)
		messaging := new(MockMessageTransport)
		svc := NewNotificationService(chargeRepo, logRepo, email, messaging, "https://cobranca.example.com.br", true)

		chargeRepo.On("ListOpen", ctx).
			Return([]domain.ChargeNotice{noticeForTest("maria@example.com.br", "+55 11 91234-5678")}, nil)
		email.On("Send", ctx, "maria@example.com.br", "Maria Silva",
			mock.AnythingOfType("string"), mock.AnythingOfType("string"), "").Return(nil)
		messaging.On("Send", ctx, "+55 11 91234-5678", mock.AnythingOfType("string")).
			Return("https://wa.me/5511912345678?text=oi", nil)
		// One flag flip, one log row per channel.
		chargeRepo.On("MarkNotified", ctx, int32(55), domain.NotificationPhase7D,
			mock.MatchedBy(func(logs []*domain.NotificationLog) bool {
				return len(logs) == 2 &&
					logs[0].Channel == domain.NotificationChannelEmail &&
					logs[1].Channel == domain.NotificationChannelMessaging &&
					logs[1].Detail == "https://wa.me/5511912345678?text=oi"
			})).Return(nil)

		result, err := svc.DispatchDue(ctx, now)
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Sent)

		chargeRepo.AssertExpectations(t)
		email.AssertExpectations(t)
		messaging.AssertExpectations(t)
	})

	t.Run("EmailFailureStillSendsWhatsApp", func(t *testing.T) {
		chargeRepo := new(MockChargeRepo)
		logRepo := new(MockNotificationLogRepo)
		email := new(MockEmailTransport)
		messaging := new(MockMessageTransport)
		svc := NewNotificationService(chargeRepo, logRepo, email, messaging, "https://cobranca.example.com.br", true)

		chargeRepo.On("ListOpen", ctx).
			Return([]domain.ChargeNotice{noticeForTest("maria@example.com.br", "+55 11 91234-5678")}, nil)
		email.On("Send", ctx, "maria@example.com.br", "Maria Silva",
			mock.AnythingOfType("string"), mock.AnythingOfType("string"), "").Return(assert.AnError)
		logRepo.On("Append", ctx, mock.MatchedBy(func(log *domain.NotificationLog) bool {
			return log.Outcome == domain.NotificationOutcomeError &&
				log.Channel == domain.NotificationChannelEmail
		})).Return(nil)
		messaging.On("Send", ctx, "+55 11 91234-5678", mock.AnythingOfType("string")).
			Return("https://wa.me/5511912345678?text=oi", nil)
		chargeRepo.On("MarkNotified", ctx, int32(55), domain.NotificationPhase7D,
			mock.MatchedBy(func(logs []*domain.NotificationLog) bool {
				return len(logs) == 1 &&
					logs[0].Channel == domain.NotificationChannelMessaging
			})).Return(nil)

		result, err := svc.DispatchDue(ctx, now)
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Sent)
		assert.Equal(t, 0, result.Failed)
		logRepo.AssertExpectations(t)
		chargeRepo.AssertExpectations(t)
	})

	t.Run("EmailBodyCarriesLinkAndAmount", func(t *testing.T) {
		chargeRepo := new(MockChargeRepo)
		logRepo := new(MockNotificationLogRepo)
		email := new(MockEmailTransport)
		svc := NewNotificationService(chargeRepo, logRepo, email, new(MockMessageTransport), "https://cobranca.example.com.br", true)

		var body string
		chargeRepo.On("ListOpen", ctx).Return([]domain.ChargeNotice{noticeForTest("maria@example.com.br", "")}, nil)
		email.On("Send", ctx, "maria@example.com.br", "Maria Silva",
			mock.AnythingOfType("string"), mock.MatchedBy(func(b string) bool {
				body = b
				return true
			}), "").Return(nil)
		chargeRepo.On("MarkNotified", ctx, int32(55), domain.NotificationPhase7D, mock.Anything).Return(nil)

		_, err := svc.DispatchDue(ctx, now)
		assert.NoError(t, err)
		assert.Contains(t, body, "R$ 1.000,00")
		assert.Contains(t, body, "10/03/2026")
		assert.Contains(t, body, "https://cobranca.example.com.br/comanda/0123456789abcdef0123456789abcdef/")
	})

	t.Run("FailedSendLogsAndKeepsFlag", func(t *testing.T) {
		chargeRepo := new(MockChargeRepo)
		logRepo := new(MockNotificationLogRepo)
		email := new(MockEmailTransport)
		svc := NewNotificationService(chargeRepo, logRepo, email, new(MockMessageTransport), "https://cobranca.example.com.br", true)

		chargeRepo.On("ListOpen", ctx).Return([]domain.ChargeNotice{noticeForTest("maria@example.com.br", "")}, nil)
		email.On("Send", ctx, "maria@example.com.br", "Maria Silva",
			mock.AnythingOfType("string"), mock.AnythingOfType("string"), "").Return(assert.AnError)
		logRepo.On("Append", ctx, mock.MatchedBy(func(log *domain.NotificationLog) bool {
			return log.Outcome == domain.NotificationOutcomeError && log.ChargeID == 55
		})).Return(nil)

		result, err := svc.DispatchDue(ctx, now)
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, 0, result.Sent)

		// The flag flip must never happen on a failed send.
		chargeRepo.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		logRepo.AssertExpectations(t)
	})

	t.Run("PhoneOnlyTenantUsesMessaging", func(t *testing.T) {
		chargeRepo := new(MockChargeRepo)
		logRepo := new(MockNotificationLogRepo)
		messaging := new(MockMessageTransport)
		svc := NewNotificationService(chargeRepo, logRepo, new(MockEmailTransport), messaging, "https://cobranca.example.com.br", true)

		chargeRepo.On("ListOpen", ctx).Return([]domain.ChargeNotice{noticeForTest("", "+55 11 91234-5678")}, nil)
		messaging.On("Send", ctx, "+55 11 91234-5678", mock.AnythingOfType("string")).
			Return("https://wa.me/5511912345678?text=oi", nil)
		chargeRepo.On("MarkNotified", ctx, int32(55), domain.NotificationPhase7D,
			mock.MatchedBy(func(logs []*domain.NotificationLog) bool {
				return len(logs) == 1 &&
					logs[0].Channel == domain.NotificationChannelMessaging &&
					logs[0].Detail == "https://wa.me/5511912345678?text=oi"
			})).Return(nil)

		result, err := svc.DispatchDue(ctx, now)
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Sent)
		messaging.AssertExpectations(t)
	})

	t.Run("ConcurrentMarkIsSkip", func(t *testing.T) {
		chargeRepo := new(MockChargeRepo)
		email := new(MockEmailTransport)
		svc := NewNotificationService(chargeRepo, new(MockNotificationLogRepo), email, new(MockMessageTransport), "https://cobranca.example.com.br", true)

		chargeRepo.On("ListOpen", ctx).Return([]domain.ChargeNotice{noticeForTest("maria@example.com.br", "")}, nil)
		email.On("Send", ctx, "maria@example.com.br", "Maria Silva",
			mock.AnythingOfType("string"), mock.AnythingOfType("string"), "").Return(nil)
		chargeRepo.On("MarkNotified", ctx, int32(55), domain.NotificationPhase7D, mock.Anything).
			Return(domain.ErrConflict)

		result, err := svc.DispatchDue(ctx, now)
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 0, result.Sent)
		assert.Equal(t, 0, result.Failed)
	})

	t.Run("NoPhaseOwedIsSkip", func(t *testing.T) {
		chargeRepo := new(MockChargeRepo)
		svc := NewNotificationService(chargeRepo, new(MockNotificationLogRepo), new(MockEmailTransport), new(MockMessageTransport), "https://cobranca.example.com.br", true)

		notice := noticeForTest("maria@example.com.br", "")
		notice.Charge.Sent7D = true
		chargeRepo.On("ListOpen", ctx).Return([]domain.ChargeNotice{notice}, nil)

		result, err := svc.DispatchDue(ctx, now)
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Skipped)
	})

	t.Run("DisabledIsNoOp", func(t *testing.T) {
		chargeRepo := new(MockChargeRepo)
		svc := NewNotificationService(chargeRepo, new(MockNotificationLogRepo), new(MockEmailTransport), new(MockMessageTransport), "https://cobranca.example.com.br", false)

		result, err := svc.DispatchDue(ctx, now)
		assert.NoError(t, err)
		assert.Equal(t, 0, result.Considered)
		chargeRepo.AssertNotCalled(t, "ListOpen", mock.Anything)
	})
}

func TestNotificationService_DispatchUrgent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC)
	today := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	chargeRepo := new(MockChargeRepo)
	email := new(MockEmailTransport)
	svc := NewNotificationService(chargeRepo, new(MockNotificationLogRepo), email, new(MockMessageTransport), "https://cobranca.example.com.br", true)

	// Due tomorrow: the 1D phase is owed.
	chargeRepo.On("ListOpenDueBetween", ctx, today, today.AddDate(0, 0, 1)).
		Return([]domain.ChargeNotice{noticeForTest("maria@example.com.br", "")}, nil)
	email.On("Send", ctx, "maria@example.com.br", "Maria Silva",
		mock.AnythingOfType("string"), mock.AnythingOfType("string"), "").Return(nil)
	chargeRepo.On("MarkNotified", ctx, int32(55), domain.NotificationPhase1D, mock.Anything).Return(nil)

	result, err := svc.DispatchUrgent(ctx, now)
	assert.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
	chargeRepo.AssertExpectations(t)
}
