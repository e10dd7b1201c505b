// Package cklb reads and writes checklist bundles in the CKLB JSON format.
//
// Decoding validates every field the reconciler depends on and fails with an
// *errors.ParseError naming the file and the offending JSON path. Keys the
// model does not interpret are carried through untouched, so a document that
// is loaded and saved again differs only in the fields that were changed.
package cklb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/checkmate/pkg/checklist"
	"github.com/agentstation/checkmate/pkg/constants"
	"github.com/agentstation/checkmate/pkg/errors"
)

const format = "cklb"

// Document keys.
const (
	keyStigs      = "stigs"
	keyTargetData = "target_data"
	keyTitle      = "title"
	keyID         = "id"
	keyVersion    = "cklb_version"
)

// Benchmark keys.
const (
	keyStigID      = "stig_id"
	keyStigName    = "stig_name"
	keyStigVersion = "version"
	keyReleaseInfo = "release_info"
	keyRules       = "rules"
	keySize        = "size"
)

// Rule keys.
const (
	keyGroupIDSrc     = "group_id_src"
	keyGroupID        = "group_id"
	keyRuleIDSrc      = "rule_id_src"
	keyRuleID         = "rule_id"
	keySeverity       = "severity"
	keyRuleTitle      = "rule_title"
	keyDiscussion     = "discussion"
	keyGroupTitle     = "group_title"
	keyRuleVersion    = "rule_version"
	keyCheckContent   = "check_content"
	keyFixText        = "fix_text"
	keyCCIs           = "ccis"
	keyStatus         = "status"
	keyComments       = "comments"
	keyFindingDetails = "finding_details"
	keyOverrides      = "overrides"
	keyIsNew          = "is_new"
	keyEvaluateSTIG   = "evaluate-stig"
	keyOldStatus      = "old_status"
	keyNewStatus      = "new_status"
)

// ruleKeys are interpreted by the model and never stored in Extras.
// group_id and rule_id stay in Extras because they are only fallbacks.
// evaluate-stig stays in Extras too; only its status pair is modelled.
var ruleKeys = map[string]bool{
	keyGroupIDSrc: true, keyRuleIDSrc: true, keySeverity: true, keyRuleTitle: true,
	keyDiscussion: true, keyGroupTitle: true, keyRuleVersion: true, keyCheckContent: true,
	keyFixText: true, keyCCIs: true, keyStatus: true, keyComments: true,
	keyFindingDetails: true, keyOverrides: true, keyIsNew: true,
}

var benchmarkKeys = map[string]bool{
	keyStigID: true, keyStigName: true, keyStigVersion: true, keyReleaseInfo: true, keyRules: true,
}

var documentKeys = map[string]bool{
	keyStigs: true, keyTargetData: true, keyID: true,
}

// Load reads and parses the checklist at path.
func Load(path string) (*checklist.Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(data, path)
}

// Parse decodes a CKLB document. source labels the data in errors and
// becomes the bundle's Source.
func Parse(data []byte, source string) (*checklist.Bundle, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, jsonError(source, "", err)
	}
	if doc == nil {
		return nil, errors.NewParseError(format, source, "", "document is empty", nil)
	}

	stigsRaw, ok := doc[keyStigs]
	if !ok {
		return nil, missing(source, keyStigs)
	}
	var stigs []map[string]json.RawMessage
	if err := json.Unmarshal(stigsRaw, &stigs); err != nil {
		return nil, jsonError(source, keyStigs, err)
	}
	switch {
	case len(stigs) == 0:
		return nil, errors.NewParseError(format, source, keyStigs, "no benchmark present", nil)
	case len(stigs) > 1:
		return nil, errors.NewParseError(format, source, keyStigs,
			fmt.Sprintf("%d benchmarks in one checklist; exactly one is supported", len(stigs)), nil)
	}
	stig := stigs[0]
	const stigPath = "stigs[0]"

	benchmarkID, err := requiredString(source, stigPath, stig, keyStigID)
	if err != nil {
		return nil, err
	}
	name, err := optionalString(source, stigPath, stig, keyStigName)
	if err != nil {
		return nil, err
	}
	rawVersion, err := optionalString(source, stigPath, stig, keyStigVersion)
	if err != nil {
		return nil, err
	}
	releaseInfo, err := optionalString(source, stigPath, stig, keyReleaseInfo)
	if err != nil {
		return nil, err
	}
	version, err := checklist.ParseVersionFields(rawVersion, releaseInfo)
	if err != nil {
		return nil, errors.NewParseError(format, source, stigPath+"."+keyStigVersion,
			fmt.Sprintf("unparseable version token (version %q, release_info %q)", rawVersion, releaseInfo), err)
	}

	rulesRaw, ok := stig[keyRules]
	if !ok {
		return nil, missing(source, stigPath+"."+keyRules)
	}
	var rawRules []map[string]json.RawMessage
	if err := json.Unmarshal(rulesRaw, &rawRules); err != nil {
		return nil, jsonError(source, stigPath+"."+keyRules, err)
	}
	rules := make([]checklist.RuleEvaluation, 0, len(rawRules))
	for i, raw := range rawRules {
		rule, err := decodeRule(source, fmt.Sprintf("%s.rules[%d]", stigPath, i), raw)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	var host map[string]any
	if raw, ok := doc[keyTargetData]; ok {
		if err := json.Unmarshal(raw, &host); err != nil {
			return nil, jsonError(source, keyTargetData, err)
		}
	}

	docID, err := optionalString(source, "", doc, keyID)
	if err != nil {
		return nil, err
	}

	bundle, err := checklist.New(benchmarkID, version, rules,
		checklist.WithID(docID),
		checklist.WithName(name),
		checklist.WithRawVersion(rawVersion, releaseInfo),
		checklist.WithSource(source),
		checklist.WithHostMetadata(host),
		checklist.WithExtras(extras(doc, documentKeys), extras(stig, benchmarkKeys)),
	)
	if err != nil {
		var vErr *errors.ValidationError
		if errors.As(err, &vErr) {
			field := strings.Replace(vErr.Field, ".rule_key", "."+keyGroupIDSrc, 1)
			return nil, errors.NewParseError(format, source, stigPath+"."+field, vErr.Message, err)
		}
		return nil, errors.WrapParse(format, source, err)
	}
	return bundle, nil
}

func decodeRule(source, path string, raw map[string]json.RawMessage) (checklist.RuleEvaluation, error) {
	var r checklist.RuleEvaluation
	var err error

	str := func(key string) string {
		if err != nil {
			return ""
		}
		var s string
		s, err = optionalString(source, path, raw, key)
		return s
	}

	r.RuleKey = str(keyGroupIDSrc)
	if r.RuleKey == "" {
		r.RuleKey = str(keyGroupID)
	}
	r.RuleUID = str(keyRuleIDSrc)
	if r.RuleUID == "" {
		r.RuleUID = str(keyRuleID)
	}
	r.Severity = str(keySeverity)
	r.Title = str(keyRuleTitle)
	r.Description = str(keyDiscussion)
	r.GroupTitle = str(keyGroupTitle)
	r.RuleVersion = str(keyRuleVersion)
	r.CheckContent = str(keyCheckContent)
	r.FixText = str(keyFixText)
	r.Comments = str(keyComments)
	r.FindingDetails = str(keyFindingDetails)
	status := str(keyStatus)
	if err != nil {
		return r, err
	}

	if r.RuleKey == "" {
		return r, missing(source, path+"."+keyGroupIDSrc)
	}
	if r.Status, err = checklist.ParseStatus(status); err != nil {
		return r, errors.NewParseError(format, source, path+"."+keyStatus, fmt.Sprintf("invalid status %q", status), err)
	}

	if v, ok := raw[keyCCIs]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &r.CCIs); err != nil {
			return r, jsonError(source, path+"."+keyCCIs, err)
		}
	}
	if v, ok := raw[keyOverrides]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &r.Overrides); err != nil {
			return r, jsonError(source, path+"."+keyOverrides, err)
		}
	}
	if v, ok := raw[keyIsNew]; ok && !isNull(v) {
		if err := json.Unmarshal(v, &r.IsNew); err != nil {
			return r, jsonError(source, path+"."+keyIsNew, err)
		}
	}

	if v, ok := raw[keyEvaluateSTIG]; ok && !isNull(v) {
		if r.Tool, err = decodeTool(source, join(path, keyEvaluateSTIG), v); err != nil {
			return r, err
		}
	}

	r.Extra = extras(raw, ruleKeys)
	return r, nil
}

func decodeTool(source, path string, raw json.RawMessage) (*checklist.ToolStatus, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, jsonError(source, path, err)
	}
	oldStatus, err := optionalString(source, path, m, keyOldStatus)
	if err != nil {
		return nil, err
	}
	newStatus, err := optionalString(source, path, m, keyNewStatus)
	if err != nil {
		return nil, err
	}
	return &checklist.ToolStatus{OldStatus: oldStatus, NewStatus: newStatus}, nil
}

// Encode renders a bundle as an indented CKLB document.
func Encode(b *checklist.Bundle) ([]byte, error) {
	docExtra, stigExtra := b.Extras()
	rawVersion, releaseInfo := b.RawVersion()
	if rawVersion == "" && releaseInfo == "" {
		rawVersion = b.Version().String()
	}

	rules := make([]map[string]any, 0, b.Len())
	for _, r := range b.Rules() {
		rule, err := encodeRule(r)
		if err != nil {
			return nil, errors.NewParseError(format, b.Source(), "rules."+r.RuleKey+"."+keyEvaluateSTIG, "encode failed", err)
		}
		rules = append(rules, rule)
	}

	stig := merged(stigExtra, map[string]any{
		keyStigID:      b.BenchmarkID(),
		keyStigName:    b.BenchmarkName(),
		keyStigVersion: rawVersion,
		keyReleaseInfo: releaseInfo,
		keySize:        len(rules),
		keyRules:       rules,
	})

	host := b.HostMetadata()
	if host == nil {
		host = map[string]any{"target_type": constants.DefaultTargetType}
	}
	doc := merged(docExtra, map[string]any{
		keyID:         b.ID(),
		keyStigs:      []map[string]any{stig},
		keyTargetData: host,
	})
	if _, ok := doc[keyTitle]; !ok {
		doc[keyTitle] = b.BenchmarkName()
	}
	if _, ok := doc[keyVersion]; !ok {
		doc[keyVersion] = constants.CKLBVersion
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, errors.NewParseError(format, b.Source(), "", "encode failed", err)
	}
	return buf.Bytes(), nil
}

func encodeRule(r checklist.RuleEvaluation) (map[string]any, error) {
	ccis := r.CCIs
	if ccis == nil {
		ccis = []string{}
	}
	overrides := r.Overrides
	if overrides == nil {
		overrides = map[string]any{}
	}
	fields := map[string]any{
		keyGroupIDSrc:     r.RuleKey,
		keyRuleIDSrc:      r.RuleUID,
		keySeverity:       r.Severity,
		keyRuleTitle:      r.Title,
		keyDiscussion:     r.Description,
		keyGroupTitle:     r.GroupTitle,
		keyRuleVersion:    r.RuleVersion,
		keyCheckContent:   r.CheckContent,
		keyFixText:        r.FixText,
		keyCCIs:           ccis,
		keyStatus:         string(r.Status),
		keyComments:       r.Comments,
		keyFindingDetails: r.FindingDetails,
		keyOverrides:      overrides,
		keyIsNew:          r.IsNew,
	}
	if r.Tool != nil {
		tool, err := encodeTool(r.Extra[keyEvaluateSTIG], r.Tool)
		if err != nil {
			return nil, err
		}
		fields[keyEvaluateSTIG] = tool
	}
	return merged(r.Extra, fields), nil
}

// encodeTool writes the status pair into the rule's evaluate-stig object,
// keeping the evaluator's other keys.
func encodeTool(raw json.RawMessage, t *checklist.ToolStatus) (map[string]any, error) {
	out := make(map[string]any)
	if len(raw) > 0 && !isNull(raw) {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
		for k, v := range m {
			out[k] = v
		}
	}
	out[keyOldStatus] = t.OldStatus
	out[keyNewStatus] = t.NewStatus
	return out, nil
}

// Save writes b to path atomically: the document is written to a temporary
// file in the same directory and renamed over path.
func Save(b *checklist.Bundle, path string) error {
	data, err := Encode(b)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*"+constants.TempSuffix)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.WrapIO("write", tmpName, err)
	}
	if err := tmp.Chmod(constants.FilePermissions); err != nil {
		tmp.Close()
		return errors.WrapIO("chmod", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("close", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.WrapIO("rename", path, err)
	}
	return nil
}

// IsChecklistFile reports whether path has the checklist extension.
func IsChecklistFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), constants.ChecklistExtension)
}

func requiredString(source, path string, m map[string]json.RawMessage, key string) (string, error) {
	s, err := optionalString(source, path, m, key)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(s) == "" {
		return "", missing(source, join(path, key))
	}
	return s, nil
}

func optionalString(source, path string, m map[string]json.RawMessage, key string) (string, error) {
	raw, ok := m[key]
	if !ok || isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", errors.NewParseError(format, source, join(path, key), "expected a string", err)
	}
	return s, nil
}

func extras(m map[string]json.RawMessage, known map[string]bool) checklist.Extras {
	var out checklist.Extras
	for k, v := range m {
		if known[k] {
			continue
		}
		if out == nil {
			out = make(checklist.Extras)
		}
		out[k] = v
	}
	return out
}

func merged(extra checklist.Extras, fields map[string]any) map[string]any {
	out := make(map[string]any, len(extra)+len(fields))
	for k, v := range extra {
		out[k] = v
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func missing(source, field string) error {
	return errors.NewParseError(format, source, field, "missing required field", nil)
}

func jsonError(source, field string, err error) error {
	var syntax *json.SyntaxError
	if errors.As(err, &syntax) {
		return errors.NewParseError("json", source, field, fmt.Sprintf("%s (offset %d)", syntax.Error(), syntax.Offset), err)
	}
	return errors.NewParseError("json", source, field, err.Error(), err)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}
