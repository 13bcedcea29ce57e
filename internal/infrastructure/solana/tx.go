package solana

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/mr-tron/base58"
)

// AccountMeta describes one account slot of an instruction.
type AccountMeta struct {
	PublicKey  PublicKey
	IsSigner   bool
	IsWritable bool
}

// Instruction is a single program invocation.
type Instruction struct {
	ProgramID PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

// Transaction is a legacy-format transaction under construction. Signature
// slots for signers whose key the service does not hold stay zeroed so the
// wallet can fill them in.
type Transaction struct {
	message    []byte
	signerKeys []PublicKey
	signatures [][]byte
}

// NewTransaction compiles instructions into a legacy message. The fee payer
// owns the first signature slot.
func NewTransaction(feePayer PublicKey, recentBlockhash string, instructions []Instruction) (*Transaction, error) {
	blockhash, err := base58.Decode(recentBlockhash)
	if err != nil {
		return nil, fmt.Errorf("decode blockhash: %w", err)
	}
	if len(blockhash) != 32 {
		return nil, fmt.Errorf("blockhash must be 32 bytes, got %d", len(blockhash))
	}

	keys := compileAccounts(feePayer, instructions)

	numSigners := 0
	numReadonlySigned := 0
	numReadonlyUnsigned := 0
	for _, k := range keys {
		if k.IsSigner {
			numSigners++
			if !k.IsWritable {
				numReadonlySigned++
			}
		} else if !k.IsWritable {
			numReadonlyUnsigned++
		}
	}

	index := make(map[PublicKey]int, len(keys))
	for i, k := range keys {
		index[k.PublicKey] = i
	}

	var msg bytes.Buffer
	msg.WriteByte(byte(numSigners))
	msg.WriteByte(byte(numReadonlySigned))
	msg.WriteByte(byte(numReadonlyUnsigned))

	writeCompactU16(&msg, len(keys))
	for _, k := range keys {
		msg.Write(k.PublicKey[:])
	}

	msg.Write(blockhash)

	writeCompactU16(&msg, len(instructions))
	for _, ins := range instructions {
		progIdx, ok := index[ins.ProgramID]
		if !ok {
			return nil, fmt.Errorf("program %s missing from account table", ins.ProgramID)
		}
		msg.WriteByte(byte(progIdx))
		writeCompactU16(&msg, len(ins.Accounts))
		for _, acc := range ins.Accounts {
			msg.WriteByte(byte(index[acc.PublicKey]))
		}
		writeCompactU16(&msg, len(ins.Data))
		msg.Write(ins.Data)
	}

	signerKeys := make([]PublicKey, 0, numSigners)
	signatures := make([][]byte, numSigners)
	for _, k := range keys {
		if k.IsSigner {
			signerKeys = append(signerKeys, k.PublicKey)
			signatures[len(signerKeys)-1] = make([]byte, 64)
		}
	}

	return &Transaction{
		message:    msg.Bytes(),
		signerKeys: signerKeys,
		signatures: signatures,
	}, nil
}

// compileAccounts merges instruction account metas into the canonical order:
// writable signers, readonly signers, writable non-signers, readonly
// non-signers, with the fee payer always first.
func compileAccounts(feePayer PublicKey, instructions []Instruction) []AccountMeta {
	merged := map[PublicKey]*AccountMeta{
		feePayer: {PublicKey: feePayer, IsSigner: true, IsWritable: true},
	}
	order := []PublicKey{feePayer}

	note := func(m AccountMeta) {
		if existing, ok := merged[m.PublicKey]; ok {
			existing.IsSigner = existing.IsSigner || m.IsSigner
			existing.IsWritable = existing.IsWritable || m.IsWritable
			return
		}
		copied := m
		merged[m.PublicKey] = &copied
		order = append(order, m.PublicKey)
	}

	for _, ins := range instructions {
		for _, acc := range ins.Accounts {
			note(acc)
		}
		note(AccountMeta{PublicKey: ins.ProgramID})
	}

	rank := func(m *AccountMeta) int {
		switch {
		case m.PublicKey == feePayer:
			return 0
		case m.IsSigner && m.IsWritable:
			return 1
		case m.IsSigner:
			return 2
		case m.IsWritable:
			return 3
		default:
			return 4
		}
	}

	// Stable bucket sort keeps first-seen order inside each class.
	keys := make([]AccountMeta, 0, len(order))
	for class := 0; class <= 4; class++ {
		for _, pk := range order {
			m := merged[pk]
			if rank(m) == class {
				keys = append(keys, *m)
			}
		}
	}
	return keys
}

// Message returns the serialized message bytes (the signing payload).
func (t *Transaction) Message() []byte {
	return t.message
}

// SignerKeys returns the ordered signer slots.
func (t *Transaction) SignerKeys() []PublicKey {
	return t.signerKeys
}

// PartialSign fills the signature slots for the keypairs the service holds.
// Slots for other signers (the claimant) remain zeroed.
func (t *Transaction) PartialSign(keypairs ...*Keypair) error {
	for _, kp := range keypairs {
		found := false
		for i, pk := range t.signerKeys {
			if pk == kp.PublicKey {
				t.signatures[i] = kp.Sign(t.message)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("signer %s not present in transaction", kp.PublicKey)
		}
	}
	return nil
}

// Serialize returns the full wire transaction (signatures + message).
func (t *Transaction) Serialize() []byte {
	var buf bytes.Buffer
	writeCompactU16(&buf, len(t.signatures))
	for _, sig := range t.signatures {
		buf.Write(sig)
	}
	buf.Write(t.message)
	return buf.Bytes()
}

// ToBase64 returns the wire transaction base64-encoded, the form the Solana
// Pay transaction-request response carries.
func (t *Transaction) ToBase64() string {
	return base64.StdEncoding.EncodeToString(t.Serialize())
}

// writeCompactU16 writes the Solana short-vec length prefix.
func writeCompactU16(buf *bytes.Buffer, n int) {
	v := uint16(n)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			buf.WriteByte(b)
			return
		}
		buf.WriteByte(b | 0x80)
	}
}
