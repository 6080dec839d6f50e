// Package gateway drives the webhook pipeline: decode and repair the body,
// classify it, resolve entities, bind the action surface, and dispatch.
//
// Each inbound notification is handled to completion independently; the only
// state shared across requests is the handler registry, which is written at
// configuration time and read-only while serving.
package gateway
