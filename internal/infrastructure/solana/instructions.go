package solana

import "encoding/binary"

// SPL token program opcodes used here.
const (
	tokenOpTransferChecked byte = 12
)

// NewMemoInstruction tags the transaction with a human-readable memo.
func NewMemoInstruction(memo string, signer PublicKey) Instruction {
	return Instruction{
		ProgramID: MemoProgramID,
		Accounts: []AccountMeta{
			{PublicKey: signer, IsSigner: true},
		},
		Data: []byte(memo),
	}
}

// NewTransferCheckedInstruction moves amount base units of mint from source to
// destination token accounts. extraKeys are appended as readonly non-signers;
// the claim flow threads the reference key through here so the transfer is
// discoverable by getSignaturesForAddress.
func NewTransferCheckedInstruction(source, mint, destination, authority PublicKey, amount uint64, decimals uint8, extraKeys ...PublicKey) Instruction {
	data := make([]byte, 10)
	data[0] = tokenOpTransferChecked
	binary.LittleEndian.PutUint64(data[1:9], amount)
	data[9] = decimals

	accounts := []AccountMeta{
		{PublicKey: source, IsWritable: true},
		{PublicKey: mint},
		{PublicKey: destination, IsWritable: true},
		{PublicKey: authority, IsSigner: true},
	}
	for _, k := range extraKeys {
		accounts = append(accounts, AccountMeta{PublicKey: k})
	}

	return Instruction{
		ProgramID: TokenProgramID,
		Accounts:  accounts,
		Data:      data,
	}
}

// NewCreateAssociatedTokenAccountIdempotentInstruction creates the wallet's
// associated token account for mint if it does not exist yet. Discriminant 1
// is the idempotent variant, safe to include unconditionally.
func NewCreateAssociatedTokenAccountIdempotentInstruction(payer, ata, wallet, mint PublicKey) Instruction {
	return Instruction{
		ProgramID: AssociatedTokenProgramID,
		Accounts: []AccountMeta{
			{PublicKey: payer, IsSigner: true, IsWritable: true},
			{PublicKey: ata, IsWritable: true},
			{PublicKey: wallet},
			{PublicKey: mint},
			{PublicKey: SystemProgramID},
			{PublicKey: TokenProgramID},
		},
		Data: []byte{1},
	}
}

// Compressed-token program discriminants (Light Protocol).
const (
	compressedOpCreatePool byte = 0
	compressedOpCompress   byte = 2
	compressedOpTransfer   byte = 3
)

// NewCreateTokenPoolInstruction initializes the omnibus pool account that
// backs compression for a mint.
func NewCreateTokenPoolInstruction(payer, pool, mint PublicKey) Instruction {
	return Instruction{
		ProgramID: CompressedTokenProgramID,
		Accounts: []AccountMeta{
			{PublicKey: payer, IsSigner: true, IsWritable: true},
			{PublicKey: pool, IsWritable: true},
			{PublicKey: mint, IsWritable: true},
			{PublicKey: SystemProgramID},
			{PublicKey: TokenProgramID},
		},
		Data: []byte{compressedOpCreatePool},
	}
}

// NewCompressInstruction moves amount base units from a regular token account
// into the pool, minting the equivalent compressed balance to owner.
func NewCompressInstruction(payer, owner, sourceATA, pool, mint PublicKey, amount uint64) Instruction {
	data := make([]byte, 9)
	data[0] = compressedOpCompress
	binary.LittleEndian.PutUint64(data[1:9], amount)

	return Instruction{
		ProgramID: CompressedTokenProgramID,
		Accounts: []AccountMeta{
			{PublicKey: payer, IsSigner: true, IsWritable: true},
			{PublicKey: owner, IsSigner: true},
			{PublicKey: sourceATA, IsWritable: true},
			{PublicKey: pool, IsWritable: true},
			{PublicKey: mint},
			{PublicKey: TokenProgramID},
			{PublicKey: LightSystemProgramID},
		},
		Data: data,
	}
}

// NewCompressedTransferInstruction spends the given compressed account hashes
// and credits recipient, carrying the validity proof inline.
func NewCompressedTransferInstruction(payer, owner, recipient, mint PublicKey, amount uint64, inputHashes [][]byte, proof []byte) Instruction {
	data := make([]byte, 0, 10+len(inputHashes)*33+len(proof))
	data = append(data, compressedOpTransfer)
	amt := make([]byte, 8)
	binary.LittleEndian.PutUint64(amt, amount)
	data = append(data, amt...)
	data = append(data, byte(len(inputHashes)))
	for _, h := range inputHashes {
		data = append(data, h...)
	}
	data = append(data, proof...)

	return Instruction{
		ProgramID: CompressedTokenProgramID,
		Accounts: []AccountMeta{
			{PublicKey: payer, IsSigner: true, IsWritable: true},
			{PublicKey: owner, IsSigner: true},
			{PublicKey: recipient},
			{PublicKey: mint},
			{PublicKey: LightSystemProgramID},
		},
		Data: data,
	}
}
