// Package adapter converts between OSSA capability descriptors and MCP
// tool/resource descriptors. The forward direction is lossy (MCP tools
// carry no resource bindings or execution hints), so every conversion
// returns an explicit fidelity record naming the fields that were dropped
// or defaulted, and the stable tool name convention
// ossa.{agentId}.{capabilityName} keeps the reverse direction a
// best-effort inverse.
package adapter
