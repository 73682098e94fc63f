// Package toast is the notification channel of the content editor.
//
// Every mutating operation in the core reports exactly one success or error
// outcome through a Notifier. The live server forwards notifications to open
// pages over the WebSocket hub; tests capture them with a Recorder.
//
// Usage:
//
//	toast.Success(notifier, "Telefon numarası eklendi!")
//	toast.Error(notifier, "En az bir telefon numarası kalmalı!")
package toast
