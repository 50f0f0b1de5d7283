package constant

const NotifyQueueWaitingTemplate = `
Dear customer,

You have been placed in the waiting line for event #%d.

Your queue position is %d. You will be notified as soon as your purchase
window opens. Keep this email for your records.

Best regards,
Ticket Rush Team

Note: This is an automated message, please do not reply to this email.
`

const NotifyQueueEnteredTemplate = `
Dear customer,

Good news! It is your turn to buy tickets for event #%d.

Your purchase window is now open:
------------------------------------------
Queue Position: %d
Window Closes At: %s
------------------------------------------

Please complete your seat selection and payment before the window closes.
If the window expires, your spot is released to the next person in line.

Best regards,
Ticket Rush Team

Note: This is an automated message, please do not reply to this email.
`

const NotifyQueueExpiredTemplate = `
Dear customer,

Your purchase window for event #%d has expired.

Your queue entry is now closed. If tickets remain on sale you may register
again for a new spot in line.

Best regards,
Ticket Rush Team
`

const NotifyPaymentSuccessTemplate = `
Dear customer,

Your payment has been successfully processed.

Order Details:
------------------------------------------
Ticket ID: %s
Event: #%d
Total Amount: %s
------------------------------------------

Your ticket confirmation follows in a separate message.

Best regards,
Ticket Rush Team
`

const NotifyPaymentFailedTemplate = `
Dear customer,

Your payment for ticket %s (event #%d) was not completed and the
reservation has been released.

The seat is available again for other buyers. If you still want to attend,
please start a new reservation.

Best regards,
Ticket Rush Team
`

const NotifyTicketIssuedTemplate = `
Dear customer,

✅ TICKET CONFIRMED ✅

Ticket Details:
------------------------------------------
Ticket ID: %s
Event: #%d
Seat: %s
------------------------------------------

Please show this ticket ID at the venue entrance. Valid ID may be required.

We look forward to seeing you at the event!

Best regards,
Ticket Rush Team
`

const NotifyTicketCancelledTemplate = `
Dear customer,

Your ticket %s for event #%d (seat %s) has been cancelled.

If you believe this is a mistake, please contact our support team at
support@ticket-rush.com.

Best regards,
Ticket Rush Team
`
