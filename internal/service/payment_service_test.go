package service

import (
	"testing"

	"github.com/southeastarchers/club-backend/internal/events"
	"github.com/southeastarchers/club-backend/internal/models"
	"github.com/stretchr/testify/require"
)

func TestCreateMembershipCheckout(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "checkout@example.com")

	session, err := env.payments.CreateMembershipCheckout(user.ID)
	require.NoError(t, err)
	require.Equal(t, "cs_test", session.ID)
	require.NotZero(t, session.PaymentID)
	require.Equal(t, int64(10000), env.gateway.lastAmountCents)

	payment, err := env.paymentRepo.GetByID(session.PaymentID)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPending, payment.Status)
	require.Equal(t, models.PaymentTypeMembership, payment.PaymentType)
	require.Equal(t, env.gateway.lastReference, payment.CheckoutReference)
}

func TestCreateCreditCheckoutPricesPerCredit(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "creditcheckout@example.com")

	session, err := env.payments.CreateCreditCheckout(user.ID, 4)
	require.NoError(t, err)

	payment, err := env.paymentRepo.GetByID(session.PaymentID)
	require.NoError(t, err)
	require.Equal(t, int64(2000), payment.AmountCents)
	require.Equal(t, 4, payment.Quantity)
}

func TestCreateCreditCheckoutRejectsZeroQuantity(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "zeroqty@example.com")

	_, err := env.payments.CreateCreditCheckout(user.ID, 0)
	require.Error(t, err)
	require.True(t, IsValidationError(err))
}

func TestConfirmCashMembershipPayment(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "cashmembership@example.com")
	env.seedMembership(t, user.ID, models.MembershipStatusPending, 20, 0, 0)

	payment, _, err := env.payments.SubmitCashPayment(user.ID, models.PaymentTypeMembership, 0)
	require.NoError(t, err)

	require.NoError(t, env.payments.ConfirmCashPayment(payment.ID))

	membership := env.reloadMembership(t, user.ID)
	require.Equal(t, models.MembershipStatusActive, membership.Status)

	rows := env.ledgerRows(t)
	require.Len(t, rows, 1)
	require.Equal(t, models.TransactionTypeIncome, rows[0].Type)
	require.Equal(t, models.CategoryMembershipFees, rows[0].Category)
	require.Equal(t, int64(10000), rows[0].AmountCents)
	require.Equal(t, "Cash", rows[0].Source)
}

func TestConfirmCashCreditPayment(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "cashcredits@example.com")
	env.seedMembership(t, user.ID, models.MembershipStatusActive, 20, 0, 0)

	payment, instructions, err := env.payments.SubmitCashPayment(user.ID, models.PaymentTypeCredits, 5)
	require.NoError(t, err)
	require.NotEmpty(t, instructions)
	require.Equal(t, int64(2500), payment.AmountCents)

	require.NoError(t, env.payments.ConfirmCashPayment(payment.ID))

	membership := env.reloadMembership(t, user.ID)
	require.Equal(t, 5, membership.PurchasedCredits)
	require.Equal(t, 25, membership.CreditsRemaining())

	rows := env.ledgerRows(t)
	require.Len(t, rows, 1)
	require.Equal(t, models.CategoryShootFees, rows[0].Category)
	require.Equal(t, int64(2500), rows[0].AmountCents)
}

func TestSubmitCashPaymentRejectsDuplicatePending(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "duplicatecash@example.com")
	env.seedMembership(t, user.ID, models.MembershipStatusActive, 20, 0, 0)

	_, _, err := env.payments.SubmitCashPayment(user.ID, models.PaymentTypeCredits, 2)
	require.NoError(t, err)

	_, _, err = env.payments.SubmitCashPayment(user.ID, models.PaymentTypeCredits, 3)
	require.Error(t, err)
	require.EqualError(t, err, "You already have a pending cash payment for this.")

	// A different payment type is an independent obligation.
	_, _, err = env.payments.SubmitCashPayment(user.ID, models.PaymentTypeMembership, 0)
	require.NoError(t, err)

	// Once the first is confirmed, a fresh credit purchase goes through.
	pending, err := env.paymentRepo.GetPendingCashForUser(user.ID, models.PaymentTypeCredits)
	require.NoError(t, err)
	require.NoError(t, env.payments.ConfirmCashPayment(pending.ID))
	_, _, err = env.payments.SubmitCashPayment(user.ID, models.PaymentTypeCredits, 1)
	require.NoError(t, err)
}

func TestConfirmCashPaymentTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "confirmtwice@example.com")
	env.seedMembership(t, user.ID, models.MembershipStatusActive, 20, 0, 0)

	payment, _, err := env.payments.SubmitCashPayment(user.ID, models.PaymentTypeCredits, 2)
	require.NoError(t, err)
	require.NoError(t, env.payments.ConfirmCashPayment(payment.ID))

	err = env.payments.ConfirmCashPayment(payment.ID)
	require.Error(t, err)
	require.EqualError(t, err, "Payment has already been processed.")

	// The replay must not double-apply credits or ledger rows.
	require.Equal(t, 2, env.reloadMembership(t, user.ID).PurchasedCredits)
	require.Len(t, env.ledgerRows(t), 1)
}

func TestConfirmCashPaymentRejectsOnlinePayment(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "onlineconfirm@example.com")

	session, err := env.payments.CreateMembershipCheckout(user.ID)
	require.NoError(t, err)

	err = env.payments.ConfirmCashPayment(session.PaymentID)
	require.Error(t, err)
	require.EqualError(t, err, "Only cash payments can be confirmed manually.")
}

func TestOnlineCompletionRecordsIncomeAndFee(t *testing.T) {
	env := newTestEnv(t)
	env.setStripeFee(t, 2.5)
	user := env.seedUser(t, "online@example.com")
	env.seedMembership(t, user.ID, models.MembershipStatusPending, 20, 0, 0)

	_, err := env.payments.CreateMembershipCheckout(user.ID)
	require.NoError(t, err)

	require.NoError(t, env.payments.HandleCheckoutCompleted(env.gateway.lastReference, "pi_123"))

	membership := env.reloadMembership(t, user.ID)
	require.Equal(t, models.MembershipStatusActive, membership.Status)

	rows := env.ledgerRows(t)
	require.Len(t, rows, 2)

	var income, expense *models.FinancialTransaction
	for i := range rows {
		switch rows[i].Type {
		case models.TransactionTypeIncome:
			income = &rows[i]
		case models.TransactionTypeExpense:
			expense = &rows[i]
		}
	}
	require.NotNil(t, income)
	require.NotNil(t, expense)
	require.Equal(t, int64(10000), income.AmountCents)
	require.Equal(t, models.CategoryMembershipFees, income.Category)
	require.Equal(t, "Stripe", income.Source)
	require.Equal(t, int64(250), expense.AmountCents)
	require.Equal(t, models.CategoryPaymentProcessingFees, expense.Category)
	require.Equal(t, income.ReceiptReference, expense.ReceiptReference,
		"fee and income rows share the receipt reference")
}

func TestOnlineCompletionWithoutFeeConfigRollsBack(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "nofee@example.com")
	env.seedMembership(t, user.ID, models.MembershipStatusPending, 20, 0, 0)

	session, err := env.payments.CreateMembershipCheckout(user.ID)
	require.NoError(t, err)

	err = env.payments.HandleCheckoutCompleted(env.gateway.lastReference, "pi_456")
	require.Error(t, err)
	require.True(t, IsConfigError(err))

	// The whole completion must roll back: payment still pending, membership
	// still pending, no ledger rows.
	payment, err := env.paymentRepo.GetByID(session.PaymentID)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPending, payment.Status)

	membership := env.reloadMembership(t, user.ID)
	require.Equal(t, models.MembershipStatusPending, membership.Status)

	require.Empty(t, env.ledgerRows(t))
}

func TestDoubleCompletionFails(t *testing.T) {
	env := newTestEnv(t)
	env.setStripeFee(t, 2.5)
	user := env.seedUser(t, "double@example.com")
	env.seedMembership(t, user.ID, models.MembershipStatusPending, 20, 0, 0)

	_, err := env.payments.CreateMembershipCheckout(user.ID)
	require.NoError(t, err)
	reference := env.gateway.lastReference

	require.NoError(t, env.payments.HandleCheckoutCompleted(reference, "pi_789"))

	err = env.payments.HandleCheckoutCompleted(reference, "pi_789")
	require.Error(t, err)
	require.EqualError(t, err, "Payment has already been processed.")

	// The replay must not double-record income.
	require.Len(t, env.ledgerRows(t), 2)
}

func TestCompletionCreatesMembershipWhenNoneExists(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "newviapayment@example.com")

	payment, _, err := env.payments.SubmitCashPayment(user.ID, models.PaymentTypeMembership, 0)
	require.NoError(t, err)
	require.NoError(t, env.payments.ConfirmCashPayment(payment.ID))

	membership := env.reloadMembership(t, user.ID)
	require.Equal(t, models.MembershipStatusActive, membership.Status)
	require.Equal(t, 20, membership.InitialCredits)
}

func TestHandleCheckoutFailedIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "failed@example.com")

	session, err := env.payments.CreateMembershipCheckout(user.ID)
	require.NoError(t, err)
	reference := env.gateway.lastReference

	require.NoError(t, env.payments.HandleCheckoutFailed(reference))
	require.NoError(t, env.payments.HandleCheckoutFailed(reference))

	payment, err := env.paymentRepo.GetByID(session.PaymentID)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusFailed, payment.Status)
}

func TestCancelPaymentOnlyWhilePending(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "cancelpayment@example.com")
	env.seedMembership(t, user.ID, models.MembershipStatusActive, 20, 0, 0)

	payment, _, err := env.payments.SubmitCashPayment(user.ID, models.PaymentTypeCredits, 2)
	require.NoError(t, err)
	require.NoError(t, env.payments.ConfirmCashPayment(payment.ID))

	err = env.payments.CancelPayment(payment.ID)
	require.Error(t, err)
	require.EqualError(t, err, "Payment has already been processed.")
}

func TestCompletionPublishesEventsAfterCommit(t *testing.T) {
	env := newTestEnv(t)
	env.setStripeFee(t, 2.5)
	user := env.seedUser(t, "events@example.com")
	env.seedMembership(t, user.ID, models.MembershipStatusActive, 20, 0, 0)

	var published []string
	env.bus.Subscribe(events.PaymentCompleted, func(event string, payload events.Payload) {
		published = append(published, event)
	})
	env.bus.Subscribe(events.CreditPurchased, func(event string, payload events.Payload) {
		published = append(published, event)
		require.Equal(t, 3, payload.Quantity)
	})

	_, err := env.payments.CreateCreditCheckout(user.ID, 3)
	require.NoError(t, err)
	require.NoError(t, env.payments.HandleCheckoutCompleted(env.gateway.lastReference, "pi_evt"))

	require.Equal(t, []string{events.PaymentCompleted, events.CreditPurchased}, published)
}

func TestRollbackPublishesNoEvents(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "noevents@example.com")
	env.seedMembership(t, user.ID, models.MembershipStatusPending, 20, 0, 0)

	fired := false
	env.bus.Subscribe(events.PaymentCompleted, func(event string, payload events.Payload) {
		fired = true
	})

	_, err := env.payments.CreateMembershipCheckout(user.ID)
	require.NoError(t, err)
	require.Error(t, env.payments.HandleCheckoutCompleted(env.gateway.lastReference, "pi_no"))
	require.False(t, fired)
}
