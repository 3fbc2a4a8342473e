// Package digest provides a batch pipeline that turns heterogeneous online
// content (articles in HTML, PDF or plain text, plus nested discussion
// threads) into deduplicated, summarized text artifacts ready for report
// generation and publishing.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, htmltotext/, gemini/).
package digest
