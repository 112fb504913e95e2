// Package attribution turns raw model output into action items that always
// carry an owner and a due date.
//
// Owner inference is an ordered list of OwnerStrategy values; the first one
// that resolves a name wins:
//
//  1. an email address in the item's source text or the transcript
//  2. a "Name: content" transcript line quoting or closely echoing the item
//  3. a roster name mentioned in the text
//  4. phrasing such as "Sarah will", "can Mike", "assigned to Dana"
//
// Items nobody can be matched to get the literal owner "Unassigned". Items
// without a due date get one inferred from their priority. Items below the
// confidence threshold are dropped.
//
// AssignOwners, InferDueDates and FilterByConfidence are pure and never
// modify their inputs. Pipeline chains them behind the lenient parser and
// emits spans and counters.
package attribution
