package export

// Small setters over the glTF document's index and float fields.

func appendIndex[T ~int | ~uint32](dst *[]T, i int) {
	*dst = append(*dst, T(i))
}

func setIndex[T ~int | ~uint32](dst **T, i int) {
	v := T(i)
	*dst = &v
}

func setInt[T ~int | ~uint32, S ~int | ~uint32](dst *T, v S) {
	*dst = T(v)
}

func setFloat[F ~float32 | ~float64](dst **F, v float64) {
	f := F(v)
	*dst = &f
}

func setVec[F ~float32 | ~float64](dst []F, src ...float64) {
	for i := range dst {
		if i < len(src) {
			dst[i] = F(src[i])
		}
	}
}

func setAttribute[M ~map[string]T, T ~int | ~uint32](m *M, key string, i int) {
	if *m == nil {
		*m = make(M)
	}
	(*m)[key] = T(i)
}
