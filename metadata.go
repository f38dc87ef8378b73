package normalize

import "reflect"

type fieldPlan struct {
	index   []int
	name    string
	jsonKey string
	isMeta  bool
	isAssoc bool
	ignore  bool
}

type structPlan struct {
	fields   []fieldPlan
	isEntity bool
}

// WarmPlans pre-builds field plans for provided example values or types
// (pass either a value or a *T or T).
func (n *Normalizer) WarmPlans(examples ...any) {
	for _, e := range examples {
		if e == nil {
			continue
		}
		t := reflect.TypeOf(e)
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			continue
		}
		_ = n.getOrBuildPlan(t)
	}
}

func (n *Normalizer) getOrBuildPlan(typ reflect.Type) *structPlan {
	if cached, ok := n.planCache.Load(typ); ok {
		return cached.(*structPlan)
	}
	plan := &structPlan{fields: make([]fieldPlan, 0, typ.NumField())}
	n.buildFieldPlans(typ, plan, nil)
	for i := range plan.fields {
		if plan.fields[i].isMeta {
			plan.isEntity = true
			break
		}
	}
	actual, _ := n.planCache.LoadOrStore(typ, plan)
	return actual.(*structPlan)
}

func (n *Normalizer) buildFieldPlans(typ reflect.Type, plan *structPlan, prefix []int) {
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		idx := append(append([]int(nil), prefix...), i)
		if f.Type == metaType {
			plan.fields = append(plan.fields, fieldPlan{index: idx, name: f.Name, isMeta: true})
			continue
		}
		if f.Anonymous {
			ft := f.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				n.buildFieldPlans(ft, plan, idx)
				continue
			}
		}
		if f.PkgPath != "" {
			continue
		}
		normTag := f.Tag.Get("normalize")
		ignore := normTag == "ignore" || normTag == "-"
		jsonKey := ""
		if jt, ok := f.Tag.Lookup("json"); ok {
			for j := 0; j < len(jt); j++ {
				if jt[j] == ',' {
					jt = jt[:j]
					break
				}
			}
			if jt == "-" {
				ignore = true
			} else {
				jsonKey = jt
			}
		}
		plan.fields = append(plan.fields, fieldPlan{
			index:   idx,
			name:    f.Name,
			jsonKey: jsonKey,
			isAssoc: f.Type.Implements(associationType),
			ignore:  ignore,
		})
	}
}

func (n *Normalizer) safeFieldByIndex(val reflect.Value, index []int) (reflect.Value, bool) {
	for i, x := range index {
		if i > 0 && val.Kind() == reflect.Ptr {
			if val.IsNil() {
				return reflect.Value{}, false
			}
			val = val.Elem()
		}
		val = val.Field(x)
	}
	return val, true
}

func (fp *fieldPlan) outputKey(fieldNameKeys bool) string {
	if fieldNameKeys || fp.jsonKey == "" {
		return fp.name
	}
	return fp.jsonKey
}
