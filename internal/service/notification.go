package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/logger"
	"habitat-pro/internal/repository"
	"habitat-pro/internal/utils"
)

type notificationService struct {
	chargeRepo repository.ChargeRepository
	logRepo    repository.NotificationLogRepository
	email      EmailTransport
	messaging  MessageTransport
	baseURL    string
	enabled    bool
}

func NewNotificationService(
	chargeRepo repository.ChargeRepository,
	logRepo repository.NotificationLogRepository,
	email EmailTransport,
	messaging MessageTransport,
	baseURL string,
	enabled bool,
) NotificationService {
	return &notificationService{
		chargeRepo: chargeRepo,
		logRepo:    logRepo,
		email:      email,
		messaging:  messaging,
		baseURL:    baseURL,
		enabled:    enabled,
	}
}

// DispatchDue walks every open charge and sends whatever reminder phase
// is due. Each phase fires at most once per charge; the flag flip and the
// log row are committed together, so a crash never double-sends.
func (s *notificationService) DispatchDue(ctx context.Context, now time.Time) (*DispatchResult, error) {
	if !s.enabled {
		logger.Info("notification dispatch disabled, skipping sweep")
		return &DispatchResult{}, nil
	}
	notices, err := s.chargeRepo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, notices, now), nil
}

// DispatchUrgent is the hourly sweep over charges due today or tomorrow.
// It catches charges created after the morning run.
func (s *notificationService) DispatchUrgent(ctx context.Context, now time.Time) (*DispatchResult, error) {
	if !s.enabled {
		return &DispatchResult{}, nil
	}
	today := utils.DateOnly(now)
	notices, err := s.chargeRepo.ListOpenDueBetween(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, notices, now), nil
}

func (s *notificationService) dispatch(ctx context.Context, notices []domain.ChargeNotice, now time.Time) *DispatchResult {
	result := &DispatchResult{Considered: len(notices)}
	for i := range notices {
		notice := &notices[i]
		phase, ok := duePhase(&notice.Charge, now)
		if !ok {
			result.Skipped++
			continue
		}
		if err := s.send(ctx, notice, phase, now); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				// Another worker marked the phase first.
				result.Skipped++
				continue
			}
			result.Failed++
			continue
		}
		result.Sent++
	}
	logger.Info("notification sweep finished",
		"considered", result.Considered, "sent", result.Sent,
		"failed", result.Failed, "skipped", result.Skipped)
	return result
}

// duePhase picks the reminder phase owed right now, or none. Windows are
// deliberately wide so a missed daily run still sends the reminder on
// the next sweep instead of dropping it.
func duePhase(c *domain.Charge, now time.Time) (domain.NotificationPhase, bool) {
	daysUntil := utils.DaysBetween(now, c.DueDate)
	switch {
	case daysUntil > 7:
		return "", false
	case daysUntil > 1:
		if !c.Sent7D {
			return domain.NotificationPhase7D, true
		}
	case daysUntil == 1:
		if !c.Sent1D {
			return domain.NotificationPhase1D, true
		}
	case daysUntil == 0:
		if !c.SentDue {
			return domain.NotificationPhaseDue, true
		}
	default:
		daysLate := c.DaysLate(now)
		due := 0
		for _, bucket := range domain.OverdueNoticeBuckets {
			if daysLate >= bucket && bucket > c.OverdueNoticeDays {
				due = bucket
			}
		}
		if due > 0 {
			return domain.OverduePhase(due), true
		}
	}
	return "", false
}

// send delivers one reminder on every contact channel the tenant has:
// email, WhatsApp, or both. The phase flag flips once when at least one
// channel got through; if every channel fails the flag stays untouched
// and the next sweep retries.
func (s *notificationService) send(ctx context.Context, notice *domain.ChargeNotice, phase domain.NotificationPhase, now time.Time) error {
	charge := &notice.Charge
	subject, body := s.composeMessage(notice, phase, now)

	if notice.TenantEmail == "" && notice.TenantPhone == "" {
		logger.Warn("tenant has no contact channel", "charge", charge.Number, "tenant", notice.TenantName)
		return fmt.Errorf("%w: tenant %s has no email or phone", domain.ErrValidation, notice.TenantName)
	}

	var delivered []*domain.NotificationLog
	var firstErr error

	if notice.TenantEmail != "" {
		err := s.email.Send(ctx, notice.TenantEmail, notice.TenantName, subject, body, "")
		if err != nil {
			logger.Error("reminder email failed",
				"charge", charge.Number, "phase", phase, "error", err)
			s.appendFailure(ctx, charge.ID, phase, domain.NotificationChannelEmail, notice.TenantEmail, err)
			firstErr = err
		} else {
			delivered = append(delivered, &domain.NotificationLog{
				ChargeID:  charge.ID,
				Phase:     phase,
				Channel:   domain.NotificationChannelEmail,
				Recipient: notice.TenantEmail,
				Outcome:   domain.NotificationOutcomeSent,
				SentAt:    now,
			})
		}
	}

	if notice.TenantPhone != "" {
		link, err := s.messaging.Send(ctx, notice.TenantPhone, body)
		if err != nil {
			logger.Error("reminder message failed",
				"charge", charge.Number, "phase", phase, "error", err)
			s.appendFailure(ctx, charge.ID, phase, domain.NotificationChannelMessaging, notice.TenantPhone, err)
			if firstErr == nil {
				firstErr = err
			}
		} else {
			delivered = append(delivered, &domain.NotificationLog{
				ChargeID:  charge.ID,
				Phase:     phase,
				Channel:   domain.NotificationChannelMessaging,
				Recipient: notice.TenantPhone,
				Outcome:   domain.NotificationOutcomeSent,
				Detail:    link,
				SentAt:    now,
			})
		}
	}

	if len(delivered) == 0 {
		return firstErr
	}
	return s.chargeRepo.MarkNotified(ctx, charge.ID, phase, delivered...)
}

func (s *notificationService) appendFailure(ctx context.Context, chargeID int32, phase domain.NotificationPhase, channel domain.NotificationChannel, recipient string, sendErr error) {
	if err := s.logRepo.Append(ctx, &domain.NotificationLog{
		ChargeID:  chargeID,
		Phase:     phase,
		Channel:   channel,
		Recipient: recipient,
		Outcome:   domain.NotificationOutcomeError,
		Detail:    sendErr.Error(),
		SentAt:    time.Now(),
	}); err != nil {
		logger.Error("notification log append failed", "chargeID", chargeID, "error", err)
	}
}

func (s *notificationService) composeMessage(notice *domain.ChargeNotice, phase domain.NotificationPhase, now time.Time) (subject, body string) {
	charge := &notice.Charge
	total := utils.FormatBRL(charge.Total())
	due := charge.DueDate.Format("02/01/2006")
	link := fmt.Sprintf("%s/comanda/%s/", s.baseURL, charge.Token)

	switch phase {
	case domain.NotificationPhase7D:
		subject = fmt.Sprintf("Lembrete: aluguel %s vence em %s", notice.PropertyCode, due)
		body = fmt.Sprintf(
			"Olá %s,\n\nSeu aluguel do imóvel %s (%s) vence em %s.\nValor: %s\n\nVeja os detalhes e a segunda via em:\n%s\n",
			notice.TenantName, notice.PropertyCode, notice.PropertyAddress, due, total, link)
	case domain.NotificationPhase1D:
		subject = fmt.Sprintf("Seu aluguel %s vence amanhã", notice.PropertyCode)
		body = fmt.Sprintf(
			"Olá %s,\n\nSeu aluguel do imóvel %s vence amanhã (%s).\nValor: %s\n\nDetalhes:\n%s\n",
			notice.TenantName, notice.PropertyCode, due, total, link)
	case domain.NotificationPhaseDue:
		subject = fmt.Sprintf("Seu aluguel %s vence hoje", notice.PropertyCode)
		body = fmt.Sprintf(
			"Olá %s,\n\nSeu aluguel do imóvel %s vence hoje (%s).\nValor: %s\n\nDetalhes:\n%s\n",
			notice.TenantName, notice.PropertyCode, due, total, link)
	default:
		daysLate := charge.DaysLate(now)
		subject = fmt.Sprintf("Aluguel %s em atraso há %d dia(s)", notice.PropertyCode, daysLate)
		body = fmt.Sprintf(
			"Olá %s,\n\nO aluguel do imóvel %s venceu em %s e está em atraso há %d dia(s).\nValor atualizado com encargos: %s\n\nRegularize em:\n%s\n",
			notice.TenantName, notice.PropertyCode, due, daysLate, total, link)
	}
	return subject, body
}
