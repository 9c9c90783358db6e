package agent

// MaxAlertDataSize bounds the alert payload accepted at submission time;
// oversized alerts are rejected before a session is created.
const MaxAlertDataSize = 1 * 1024 * 1024
