// Package whatsapp sends WhatsApp template notifications through a
// MyOperator-style chat API. Enquiry notifications are best effort; callers
// log failures and move on.
package whatsapp
