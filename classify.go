package duckbridge

// streamSupported reports whether the decoder can interpret vectors of the
// given logical type. Nested and exotic types (ENUM, LIST, STRUCT, MAP,
// ARRAY, UNION, BIT, VARINT) are excluded: a chunk stream either decodes
// every column of a result or refuses the result entirely.
func streamSupported(t TypeID) bool {
	switch t {
	case TypeBoolean,
		TypeTinyInt, TypeSmallInt, TypeInteger, TypeBigInt,
		TypeUTinyInt, TypeUSmallInt, TypeUInteger, TypeUBigInt,
		TypeFloat, TypeDouble,
		TypeTimestamp, TypeTimestampS, TypeTimestampMS, TypeTimestampNS, TypeTimestampTZ,
		TypeDate, TypeTime, TypeTimeTZ,
		TypeInterval,
		TypeHugeInt, TypeUHugeInt,
		TypeVarchar, TypeBlob,
		TypeDecimal, TypeUUID:
		return true
	}
	return false
}

// classifyResult builds the column type table for a result. Classification is
// all or nothing: the first unsupported column aborts with
// KindUnsupportedType and no table is produced, so a stream never exists in a
// half-decodable state.
//
// Decimal columns are resolved here, once: width, scale and the physical
// integer type the engine stores the unscaled value in. The decoder then
// reads vector memory without any further engine calls.
func classifyResult(res *apiResult) ([]ColumnMeta, error) {
	count := int(duckdbColumnCount(res))
	cols := make([]ColumnMeta, count)

	for i := 0; i < count; i++ {
		t := TypeID(duckdbColumnType(res, uint64(i)))
		name := goString(duckdbColumnName(res, uint64(i)))
		if !streamSupported(t) {
			return nil, errUnsupportedType(name, i, t)
		}

		meta := ColumnMeta{Name: name, Type: t}
		if t == TypeDecimal {
			logical := duckdbColumnLogicalType(res, uint64(i))
			meta.Width = duckdbDecimalWidth(logical)
			meta.Scale = duckdbDecimalScale(logical)
			meta.decimalStorage = TypeID(duckdbDecimalInternalType(logical))
			duckdbDestroyLogicalType(&logical)

			switch meta.decimalStorage {
			case TypeSmallInt, TypeInteger, TypeBigInt, TypeHugeInt:
			default:
				return nil, errUnsupportedType(name, i, t)
			}
		}
		cols[i] = meta
	}
	return cols, nil
}
