// Package enquiry records leads from public driver sites: free-form contact
// messages and structured trip booking requests. Each enquiry is persisted
// first and then forwarded to the driver over WhatsApp on a best-effort
// basis.
package enquiry
