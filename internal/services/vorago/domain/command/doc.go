// Package command defines the outcome envelope shared by every Vorago command.
//
// Commands never fail with errors for expected player mistakes. They return a
// Decision carrying either the effects that were applied or the rejections that
// explain why state was left untouched. Callers surface the rejection code and
// message; nothing needs to be rolled back.
package command
