package allocator

import "github.com/vladislavdragonenkov/fulfillment/internal/domain"

// AvailableProducts возвращает товары, доступные пользователю в радиусе
// обслуживания: объединение остатков достижимых дарксторов. Для SKU,
// встречающегося в нескольких дарксторах, берётся запись ближайшего.
func (s *Service) AvailableProducts(at domain.Location) []domain.Product {
	stores := s.directory.FindWithin(at, s.radius)

	seen := make(map[int64]struct{})
	var result []domain.Product
	for _, store := range stores {
		for _, prod := range store.AvailableProducts() {
			if _, ok := seen[prod.SKU]; ok {
				continue
			}
			seen[prod.SKU] = struct{}{}
			result = append(result, prod)
		}
	}
	return result
}
